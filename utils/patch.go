package utils

import (
	"reflect"
	"strings"
)

// ColumnUpdates turns a patch DTO into a gorm update map: every non-nil
// pointer field keyed by its json name, or by renames[json name] when set.
// Fields without a json name are skipped.
func ColumnUpdates(dto any, renames map[string]string) map[string]any {
	updates := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return updates
	}

	v = v.Elem()
	for _, sf := range reflect.VisibleFields(v.Type()) {
		fv := v.FieldByIndex(sf.Index)
		if !sf.IsExported() || fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		column := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if column == "" || column == "-" {
			continue
		}
		if alt := renames[column]; alt != "" {
			column = alt
		}
		updates[column] = fv.Elem().Interface()
	}
	return updates
}
