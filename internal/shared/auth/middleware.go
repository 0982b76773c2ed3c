package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/disnaker/sipelan/internal/shared/config"
	"github.com/disnaker/sipelan/internal/shared/types"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Role is the access role carried in a user's token.
type Role string

const (
	// RoleAdmin is intake/back-office staff: verifies and routes complaints.
	RoleAdmin Role = "admin"
	// RoleStaff belongs to exactly one unit (bidang) and works routed complaints.
	RoleStaff Role = "staff"
	// RolePublic is a citizen account; submission and tracking need no account
	// at all, so this role only appears on optional reporter logins.
	RolePublic Role = "public"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RolePublic:
		return true
	}
	return false
}

// User represents the authenticated user from JWT claims
type User struct {
	ID     types.ID `json:"sub"`
	Name   string   `json:"name"`
	Role   Role     `json:"role"`
	UnitID types.ID `json:"unit_id"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaffOf reports whether the user is unit staff of the given unit.
func (u *User) IsStaffOf(unitID types.ID) bool {
	return u.Role == RoleStaff && !u.UnitID.IsZero() && u.UnitID == unitID
}

// Claims extends JWT claims with sipelan-specific data
type Claims struct {
	jwt.RegisteredClaims
	Name   string `json:"name"`
	Role   string `json:"role"`
	UnitID string `json:"unit_id,omitempty"`
}

// Middleware creates JWT authentication middleware
func Middleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			})

			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(*Claims)
			if !ok || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			role := Role(claims.Role)
			if !role.Valid() {
				writeError(w, http.StatusUnauthorized, "unknown role in token")
				return
			}

			user := &User{
				ID:     types.ID(claims.Subject),
				Name:   claims.Name,
				Role:   role,
				UnitID: types.ID(claims.UnitID),
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the user from request context
func GetUser(ctx context.Context) *User {
	user, ok := ctx.Value(UserContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}

// RequireRoles creates middleware that requires one of the given roles
func RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// IssueToken signs a token for the given user. Used by the dev login helper
// and by tests; production token issuance happens in the identity gateway.
func IssueToken(cfg config.AuthConfig, user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.TokenTTLHours) * time.Hour)),
		},
		Name:   user.Name,
		Role:   string(user.Role),
		UnitID: user.UnitID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
