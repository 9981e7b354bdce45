package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hubstaffExport = "Organization,Time zone,Date,Project,Task ID,Task,Time,Activity,Earned,Currency,Notes\n" +
	"Acme,UTC,2024-05-01,Web,11,Design review,1:30:00,80%,0,USD,\n" +
	"Acme,UTC,2024-05-02,Web,12,Backend,0:20:00,75%,0,USD,\n" +
	"Acme,UTC,2024-05-02,Web,11,Design review,0:45:00,90%,0,USD,\n"

func upload(t *testing.T, env *testEnv, filename, content string, fields map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/invoices/import", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestImportTimesheet(t *testing.T) {
	env := newTestEnv(t)

	resp := upload(t, env, "june.csv", hubstaffExport, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Items []itemResponse `json:"items"`
	}
	decode(t, resp, &got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Design review", got.Items[0].Description)
	assert.Equal(t, "2.25", got.Items[0].Quantity.String())
	assert.Equal(t, "Backend", got.Items[1].Description)
	assert.Equal(t, "0.33", got.Items[1].Quantity.String())
	assert.True(t, got.Items[0].Rate.IsZero())
}

func TestImportTimesheet_WithRate(t *testing.T) {
	env := newTestEnv(t)

	resp := upload(t, env, "JUNE.CSV", hubstaffExport, map[string]string{"rate": "80"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Items []itemResponse `json:"items"`
	}
	decode(t, resp, &got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "80", got.Items[1].Rate.String())
}

func TestImportTimesheet_Rejected(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		message  string
	}{
		{"not csv", "june.xlsx", hubstaffExport, nil, "Only .csv files can be imported"},
		{"foreign column", "june.csv", "Task,Time,Billable\nA,1:00,yes\n", nil, "Invalid headers: Billable not part of the Hubstaff timesheet format"},
		{"bad time", "june.csv", "Task,Time\nA,soon\n", nil, `Invalid time value "soon", expected H:MM`},
		{"bad rate", "june.csv", hubstaffExport, map[string]string{"rate": "-4"}, "Rate must be a non-negative number with at most 2 decimal places"},
		{"sub-cent rate", "june.csv", hubstaffExport, map[string]string{"rate": "80.125"}, "Rate must be a non-negative number with at most 2 decimal places"},
		{"signed time", "june.csv", "Task,Time\nA,+1:+30\n", nil, `Invalid time value "+1:+30", expected H:MM`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := upload(t, env, tc.filename, tc.content, tc.fields)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var got errorResponse
			decode(t, resp, &got)
			assert.Equal(t, tc.message, got.Error)
		})
	}

	t.Run("no file", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/invoices/import", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
