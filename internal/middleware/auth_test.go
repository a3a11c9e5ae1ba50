package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func newTestRouter(auth *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.Subject())
	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, SubjectFrom(c))
	})
	r.GET("/private", RequireSubject(), func(c *gin.Context) {
		c.String(http.StatusOK, SubjectFrom(c))
	})
	return r
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func do(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHeaderSubjectWithoutSecret(t *testing.T) {
	r := newTestRouter(NewAuthenticator(""))

	w := do(r, "/private", map[string]string{"X-User-ID": "user-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestRequireSubjectRejectsAnonymous(t *testing.T) {
	r := newTestRouter(NewAuthenticator(""))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, "/open", nil).Code)
}

func TestBearerToken(t *testing.T) {
	r := newTestRouter(NewAuthenticator(secret))
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   "user-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	w := do(r, "/private", map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestBearerTokenIgnoresHeaderWhenSecretSet(t *testing.T) {
	r := newTestRouter(NewAuthenticator(secret))

	w := do(r, "/private", map[string]string{"X-User-ID": "spoofed"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerTokenRejected(t *testing.T) {
	r := newTestRouter(NewAuthenticator(secret))

	tests := []struct {
		name   string
		header string
	}{
		{name: "wrong secret", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{Subject: "u"})},
		{name: "expired", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
			Subject:   "u",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
		{name: "no subject", header: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{})},
		{name: "wrong algorithm", header: "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.RegisteredClaims{Subject: "u"})},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/open", map[string]string{"Authorization": tt.header})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestBearerTokenFromQuery(t *testing.T) {
	r := newTestRouter(NewAuthenticator(secret))
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{Subject: "user-7"})

	w := do(r, "/private?token="+token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-7", w.Body.String())
}
