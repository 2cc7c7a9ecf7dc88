package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const AccessTokenCookie = "access_token"

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves request identity from a signed access token,
// carried either as a Bearer header or the access_token cookie. It only
// verifies tokens; issuing them is someone else's job.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, _, err := m.resolve(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		c.Set("uid", uid)
		return next(c)
	}
}

func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, role, err := m.resolve(c)
		if err != nil || role != "admin" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		c.Set("uid", uid)
		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context) (uid, role string, err error) {
	token := ""
	if authz := c.Request().Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		token = strings.TrimPrefix(authz, "Bearer ")
	} else if cookie, cerr := c.Cookie(AccessTokenCookie); cerr == nil {
		token = cookie.Value
	}
	if token == "" {
		return "", "", ErrInvalidToken
	}
	return m.Verify(token)
}

// Verify parses and validates a raw token, returning the subject and role.
// Also used by the socket handshake, where the cookie arrives outside echo's
// request flow.
func (m *AuthMiddleware) Verify(tokenStr string) (uid, role string, err error) {
	var cl claims
	token, err := jwt.ParseWithClaims(tokenStr, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || cl.Subject == "" {
		return "", "", ErrInvalidToken
	}
	return cl.Subject, cl.Role, nil
}
