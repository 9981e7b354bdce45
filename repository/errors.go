package repository

import (
	ierr "invoicing-backend/errors"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// translate marks a gorm error for the HTTP layer. entity names the row in
// the hint returned to the caller, e.g. "Invoice not found".
func translate(err error, entity, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ierr.WithError(err).
			WithHint(entity + " not found").
			Mark(ierr.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ierr.WithError(err).
			WithHint(entity + " already exists").
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithMessage("failed to " + op).
			Mark(ierr.ErrDatabase)
	}
}

func notFound(entity, id string) error {
	return ierr.NewErrorf("%s %s not found", entity, id).
		WithHint(entity + " not found").
		Mark(ierr.ErrNotFound)
}

// checkID reports an id that is not a uuid as a missing row.
func checkID(entity, id string) error {
	if uuid.Validate(id) != nil {
		return notFound(entity, id)
	}
	return nil
}
