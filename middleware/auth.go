package middleware

import (
	"strings"
	"time"

	"campus-canteen-api/apperror"
	"campus-canteen-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the verified identity attached to a request
type Principal struct {
	UserID string
	Role   models.Role
}

// TokenService issues and verifies non-expiring HS256 identity tokens
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

// Issue creates a signed token binding subject id and role
func (s *TokenService) Issue(userID string, role models.Role) (string, error) {
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and returns the asserted identity
func (s *TokenService) Verify(tokenStr string) (Principal, error) {
	if tokenStr == "" {
		return Principal{}, apperror.Unauthenticated("No token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, apperror.Wrap(apperror.KindUnauthenticated, "Invalid token", err)
	}
	role, ok := models.ParseRole(string(claims.Role))
	if !ok || claims.Subject == "" {
		return Principal{}, apperror.Unauthenticated("Invalid token")
	}
	return Principal{UserID: claims.Subject, Role: role}, nil
}

const principalKey = "principal"

// AuthRequired verifies the bearer token and injects the principal into context
func AuthRequired(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWith(c, apperror.Unauthenticated("No token"))
			return
		}
		p, err := tokens.Verify(tokenStr)
		if err != nil {
			abortWith(c, apperror.From(err))
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			abortWith(c, apperror.Unauthenticated("No token"))
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		abortWith(c, apperror.Unauthorized("Forbidden"))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortWith(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{"error": err.Message, "code": err.Kind})
}

// CurrentPrincipal extracts the verified caller from context
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) string {
	p, _ := CurrentPrincipal(c)
	return p.UserID
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.Role {
	p, _ := CurrentPrincipal(c)
	return p.Role
}
