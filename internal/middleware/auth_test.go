package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func TestRequireBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	var gotUser string
	handler := RequireBasicAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		w.WriteHeader(http.StatusNoContent)
	}, "reports", string(hash))

	tests := []struct {
		name       string
		user       string
		password   string
		noAuth     bool
		wantStatus int
	}{
		{name: "valid credentials", user: "reports", password: "s3cret", wantStatus: http.StatusNoContent},
		{name: "wrong password", user: "reports", password: "nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong user", user: "admin", password: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "no credentials", noAuth: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/api/absences", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.user, tt.password)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "reports", gotUser)
			} else {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireBasicAuthDisabled(t *testing.T) {
	handler := RequireBasicAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "", "")

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/api/absences", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckCredentials("reports", "s3cret", "reports", hash))
	assert.False(t, CheckCredentials("reports", "other", "reports", hash))
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	handler := RequestLogger(zaptest.NewLogger(t))(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestLoggerRecordsAuthenticatedUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	var seen string
	handler := RequestLogger(zap.New(core))(RequireBasicAuth(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
	}, "alice", string(hash)))

	req := httptest.NewRequest(http.MethodGet, "/api/absences", nil)
	req.SetBasicAuth("alice", "s3cret")
	handler(httptest.NewRecorder(), req)

	assert.Equal(t, "alice", seen)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "alice", logs.All()[0].ContextMap()["user"])
}

func TestRequestLoggerWithoutAuthLogsEmptyUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := RequestLogger(zap.New(core))(func(w http.ResponseWriter, r *http.Request) {})

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "", logs.All()[0].ContextMap()["user"])
}
