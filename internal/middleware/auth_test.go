package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(mw echo.MiddlewareFunc, configure func(*http.Request)) (*httptest.ResponseRecorder, string) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	configure(req)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	var gotUID string
	handler := mw(func(c echo.Context) error {
		gotUID, _ = c.Get("uid").(string)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, gotUID
}

func TestRequireAuthBearer(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	token := signToken(t, testSecret, "user-1", "user")

	rec, uid := runMiddleware(m.RequireAuth, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", uid)
}

func TestRequireAuthCookie(t *testing.T) {
	m := NewAuthMiddleware(testSecret)
	token := signToken(t, testSecret, "user-2", "user")

	rec, uid := runMiddleware(m.RequireAuth, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", uid)
}

func TestRequireAuthRejects(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	tests := []struct {
		name      string
		configure func(*http.Request)
	}{
		{"no credential", func(*http.Request) {}},
		{"wrong secret", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-1", "user"))
		}},
		{"expired", func(req *http.Request) {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "user-1",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			})
			signed, err := token.SignedString([]byte(testSecret))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+signed)
		}},
		{"no subject", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "", "user"))
		}},
		{"garbage", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer not.a.token")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runMiddleware(m.RequireAuth, tt.configure)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	rec, uid := runMiddleware(m.RequireAdmin, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin-1", "admin"))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", uid)

	rec, _ = runMiddleware(m.RequireAdmin, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", "user"))
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "role user cannot pass the admin gate")
}

func TestVerify(t *testing.T) {
	m := NewAuthMiddleware(testSecret)

	uid, role, err := m.Verify(signToken(t, testSecret, "user-1", "admin"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
	assert.Equal(t, "admin", role)

	_, _, err = m.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
