package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/detailing-scheduler/internal/httperr"
	"github.com/BruksfildServices01/detailing-scheduler/internal/models"
)

const (
	ContextEmployeeID   = "employeeID"
	ContextEmployeeRole = "employeeRole"
)

const TokenTTL = 24 * time.Hour

// IssueToken signs an HS256 token carrying the employee id and role.
func IssueToken(secret string, emp *models.Employee, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  emp.ID,
		"role": emp.Role,
		"exp":  now.Add(TokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Expected a Bearer token.")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired.")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "Token claims are invalid.")
			return
		}

		employeeID, ok1 := claims["sub"].(string)
		role, ok2 := claims["role"].(string)
		if !ok1 || !ok2 || employeeID == "" {
			httperr.Unauthorized(c, "invalid_token_payload", "Token payload is invalid.")
			return
		}

		c.Set(ContextEmployeeID, employeeID)
		c.Set(ContextEmployeeRole, role)

		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextEmployeeRole)
		if !slices.Contains(roles, role) {
			httperr.Forbidden(c, "forbidden", "Insufficient permissions.")
			return
		}
		c.Next()
	}
}

// ActorID returns the authenticated employee id, or nil on public routes.
func ActorID(c *gin.Context) *string {
	id := c.GetString(ContextEmployeeID)
	if id == "" {
		return nil
	}
	return &id
}
