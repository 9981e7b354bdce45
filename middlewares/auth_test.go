package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ierr "invoicing-backend/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_Session(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, 24*time.Hour)

	token, err := issuer.Issue("user-1", "tenant_abc")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "tenant_abc", claims.Schema)

	_, err = NewTokenIssuer("other", time.Hour, time.Hour).Verify(token)
	assert.True(t, ierr.IsUnauthorized(err))

	_, err = issuer.VerifyShareToken(token)
	assert.True(t, ierr.IsUnauthorized(err), "session token is not a share token")
}

func TestTokenIssuer_Share(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, 24*time.Hour)

	token, err := issuer.IssueShareToken("tenant_abc", "inv-1")
	require.NoError(t, err)

	claims, err := issuer.VerifyShareToken(token)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", claims.InvoiceID)
	assert.Equal(t, SharePurpose, claims.Purpose)

	_, err = issuer.Verify(token)
	assert.True(t, ierr.IsUnauthorized(err), "share token grants no session")
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.Issue("user-1", "tenant_abc")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.True(t, ierr.IsUnauthorized(err))
	assert.Equal(t, "invalid or expired token", ierr.PublicMessage(err))
}

func TestAuthenticate(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour, time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", issuer.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string) + "@" + c.Locals("schema").(string))
	})

	token, err := issuer.Issue("user-1", "tenant_abc")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"basic", "Basic dXNlcjpwdw==", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
