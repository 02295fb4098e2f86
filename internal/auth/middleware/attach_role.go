package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/cs-expo/expograde/internal/rbac"
)

// AttachRoleFromDB replaces the JWT's role claim with the role stored in the
// users table, so a role change takes effect without waiting for the token to
// expire. allowClaimFallback keeps dev tokens working when the user row is
// missing; leave it false in production.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, sub).Scan(&role)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, sql.ErrNoRows):
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
