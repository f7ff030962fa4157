package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/loayeid/shophub/configs"
	"github.com/loayeid/shophub/internal/entity"
)

const principalKey = "principal"

// AuthCookie is the session cookie set at login; the Authorization header
// takes precedence when both are present.
const AuthCookie = "auth_token"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// Principal returns the authenticated actor for this request, if any.
func Principal(c *gin.Context) (*entity.Principal, bool) {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*entity.Principal); ok && p != nil {
			return p, true
		}
	}
	return nil, false
}

// Optional attaches the principal when a valid token is present and lets the
// request through either way. Cart and checkout accept guests.
func (a *Authz) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := a.verify(c); err == nil && p != nil {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// Require rejects the request unless the token carries one of the allowed
// roles. A missing token and an insufficient role both answer 401.
func (a *Authz) Require(allowed ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.verify(c)
		if err != nil {
			unauth(c, "invalid_token", "missing or invalid token")
			return
		}
		if _, err := entity.RequireRole(p, allowed...); err != nil {
			unauth(c, "insufficient_role", "unauthorized")
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func (a *Authz) verify(c *gin.Context) (*entity.Principal, error) {
	raw := ""
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw = strings.TrimPrefix(auth, "Bearer ")
	} else if cookie, err := c.Cookie(AuthCookie); err == nil {
		raw = cookie
	}
	if raw == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.Security.JWTSecret), nil
	},
		jwt.WithLeeway(30*time.Second), // small clock skew
		jwt.WithIssuer(a.cfg.Security.Issuer),
		jwt.WithAudience(a.cfg.Security.Audience),
	)
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	p := &entity.Principal{
		ID:    str(claims["sub"]),
		Name:  str(claims["name"]),
		Email: str(claims["email"]),
		Role:  entity.Role(str(claims["role"])),
	}
	if p.ID == "" || !p.Role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return p, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
