package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	subjectKey    = "subject"
	subjectHeader = "X-User-ID"
)

var ErrInvalidToken = errors.New("invalid token")

// Authenticator resolves the request subject. With a secret it accepts
// HS256 bearer tokens and reads the sub claim; without one it trusts the
// X-User-ID header.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	a := &Authenticator{}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// Subject stores the resolved subject, if any, on the gin context. A
// present but invalid token is rejected.
func (a *Authenticator) Subject() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.secret == nil {
			if id := strings.TrimSpace(c.GetHeader(subjectHeader)); id != "" {
				c.Set(subjectKey, id)
			}
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			// browsers cannot set headers on a websocket upgrade
			if token := c.Query("token"); token != "" {
				header = "Bearer " + token
			}
		}
		if header == "" {
			c.Next()
			return
		}

		sub, err := a.validate(header)
		if err != nil {
			slog.Warn("rejected bearer token", "error", err, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(subjectKey, sub)
		c.Next()
	}
}

func (a *Authenticator) validate(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: expected bearer token", ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return sub, nil
}

// RequireSubject rejects requests Subject could not attribute to a user.
func RequireSubject() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SubjectFrom(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

func SubjectFrom(c *gin.Context) string {
	return c.GetString(subjectKey)
}
