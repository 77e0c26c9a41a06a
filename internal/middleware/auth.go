package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const UserKey contextKey = "reportUser"

// HashPassword returns the bcrypt hash to configure as REPORT_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckCredentials compares a basic auth pair against the configured user and bcrypt hash.
func CheckCredentials(user, password, wantUser, passwordHash string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}

// RequireBasicAuth guards the report API. An empty wantUser disables the check.
func RequireBasicAuth(next http.HandlerFunc, wantUser, passwordHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantUser == "" {
			next(w, r)
			return
		}

		user, password, ok := r.BasicAuth()
		if !ok || !CheckCredentials(user, password, wantUser, passwordHash) {
			w.Header().Set("WWW-Authenticate", `Basic realm="absences", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		setRequestUser(r, user)
		ctx := context.WithValue(r.Context(), UserKey, user)
		next(w, r.WithContext(ctx))
	}
}

func GetUser(r *http.Request) string {
	if val := r.Context().Value(UserKey); val != nil {
		return val.(string)
	}
	return ""
}
