package middlewares

import (
	"strings"
	"time"

	ierr "invoicing-backend/errors"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "

	// SharePurpose marks tokens that only grant access to one invoice PDF.
	SharePurpose = "invoice_share"
)

// Claims is our custom JWT payload (subject=userID, plus tenant schema).
type Claims struct {
	Schema string `json:"schema"`
	jwt.RegisteredClaims
}

// ShareClaims authorize the public PDF link of a single invoice.
type ShareClaims struct {
	Schema    string `json:"schema"`
	InvoiceID string `json:"invoice_id"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with one secret.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	shareTTL time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, ttl, shareTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, shareTTL: shareTTL, now: time.Now}
}

// Issue signs a session token for userID in the given tenant schema.
func (t *TokenIssuer) Issue(userID, schema string) (string, error) {
	now := t.now()
	claims := &Claims{
		Schema: schema,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return t.sign(claims)
}

// IssueShareToken signs a link token for one invoice of a tenant.
func (t *TokenIssuer) IssueShareToken(schema, invoiceID string) (string, error) {
	now := t.now()
	claims := &ShareClaims{
		Schema:    schema,
		InvoiceID: invoiceID,
		Purpose:   SharePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.shareTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return t.sign(claims)
}

func (t *TokenIssuer) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", ierr.WithError(err).
			WithMessage("sign token").
			Mark(ierr.ErrSystem)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(raw string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err == nil && !token.Valid {
		err = errors.New("token not valid")
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("invalid or expired token").
			Mark(ierr.ErrUnauthorized)
	}
	return nil
}

// Verify parses a session token.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	if err := t.parse(raw, &claims); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.Schema) == "" {
		return nil, ierr.NewError("token missing subject or schema").
			WithHint("token missing subject/schema").
			Mark(ierr.ErrUnauthorized)
	}
	return &claims, nil
}

// VerifyShareToken parses an invoice link token.
func (t *TokenIssuer) VerifyShareToken(raw string) (*ShareClaims, error) {
	var claims ShareClaims
	if err := t.parse(raw, &claims); err != nil {
		return nil, err
	}
	if claims.Purpose != SharePurpose || claims.Schema == "" || claims.InvoiceID == "" {
		return nil, ierr.NewError("not a share token").
			WithHint("invalid or expired token").
			Mark(ierr.ErrUnauthorized)
	}
	return &claims, nil
}

// Authenticate validates a Bearer token and populates c.Locals("userID","schema").
func (t *TokenIssuer) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(authHeader)
		if h == "" || !strings.HasPrefix(strings.ToLower(h), strings.ToLower(bearerPrefix)) {
			return ierr.NewError("missing bearer token").
				WithHint("missing/invalid Authorization header").
				Mark(ierr.ErrUnauthorized)
		}
		raw := strings.TrimSpace(h[len(bearerPrefix):])
		if raw == "" {
			return ierr.NewError("empty bearer token").
				WithHint("invalid bearer token").
				Mark(ierr.ErrUnauthorized)
		}

		claims, err := t.Verify(raw)
		if err != nil {
			return err
		}

		c.Locals("userID", claims.Subject)
		c.Locals("schema", claims.Schema)
		return c.Next()
	}
}

// SharedInvoice validates the :token route param of a public invoice link
// and populates c.Locals("schema","invoiceID").
func (t *TokenIssuer) SharedInvoice() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := t.VerifyShareToken(c.Params("token"))
		if err != nil {
			return err
		}
		c.Locals("schema", claims.Schema)
		c.Locals("invoiceID", claims.InvoiceID)
		return c.Next()
	}
}
