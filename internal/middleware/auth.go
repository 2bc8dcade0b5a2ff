package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/dukerupert/fontgroup/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single admin account. PasswordHash is a bcrypt hash.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Enabled reports whether both fields are set.
func (c Credentials) Enabled() bool {
	return c.Username != "" && c.PasswordHash != ""
}

// RequireAdmin enforces HTTP basic auth when creds are enabled. Without
// credentials every request passes as an anonymous admin.
func RequireAdmin(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !creds.Enabled() {
				next.ServeHTTP(w, r.WithContext(auth.WithAdmin(r.Context(), auth.Admin{})))
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !checkCredentials(creds, user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="fontgroup", charset="UTF-8"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			recordUser(r.Context(), user)
			ctx := auth.WithAdmin(r.Context(), auth.Admin{Username: user})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func checkCredentials(creds Credentials, user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(creds.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passOK := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(pass)) == nil
	return userOK && passOK
}
