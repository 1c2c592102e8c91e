package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/AaronLay10/TowerEngine/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// authConfig holds credentials for the command routes.
type authConfig struct {
	adminUser  string
	adminPass  string
	playerUser string
	playerPass string
	enabled    bool
}

var auth *authConfig

// InitAuth loads credentials from HANOI_ADMIN_USER/PASS and
// HANOI_PLAYER_USER/PASS (or their *_FILE variants). Without admin
// credentials every route is open.
func InitAuth() error {
	names := []string{"HANOI_ADMIN_USER", "HANOI_ADMIN_PASS", "HANOI_PLAYER_USER", "HANOI_PLAYER_PASS"}
	values := make([]string, len(names))
	for i, name := range names {
		v, err := config.ResolveSecret(name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
		values[i] = v
	}

	auth = &authConfig{
		adminUser:  values[0],
		adminPass:  values[1],
		playerUser: values[2],
		playerPass: values[3],
		enabled:    values[0] != "" && values[1] != "",
	}
	return nil
}

// IsAuthEnabled returns true if authentication is configured.
func IsAuthEnabled() bool {
	return auth != nil && auth.enabled
}

// authenticate returns the caller's role, or "" for bad credentials.
func authenticate(r *http.Request) Role {
	if !IsAuthEnabled() {
		return RoleAdmin
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}

	if secureCompare(user, auth.adminUser) && secureCompare(pass, auth.adminPass) {
		return RoleAdmin
	}
	if auth.playerUser != "" && auth.playerPass != "" &&
		secureCompare(user, auth.playerUser) && secureCompare(pass, auth.playerPass) {
		return RolePlayer
	}
	return ""
}

// secureCompare performs a constant-time string comparison.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Tower Engine"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// RequireRole wraps a handler and requires one of the specified roles.
func RequireRole(handler http.HandlerFunc, allowedRoles ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := authenticate(r)
		if role == "" {
			requireAuth(w)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				handler(w, r)
				return
			}
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// RequireAnyRole lets admins and players through.
func RequireAnyRole(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin, RolePlayer)
}

// RequireAdmin lets only admins through.
func RequireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return RequireRole(handler, RoleAdmin)
}
