package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testAnonKey = "anon-key-for-tests"

func newTestRest(t *testing.T, h http.Handler) *restClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &restClient{baseURL: srv.URL, anonKey: testAnonKey, http: srv.Client(), log: logging.Nop()}
}

func makeJWT(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tokenBody(access, refresh, userID, email string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"token_type":    "bearer",
		"expires_in":    3600,
		"refresh_token": refresh,
		"user": map[string]any{
			"id":            userID,
			"email":         email,
			"user_metadata": map[string]any{"name": "Alice"},
		},
	}
}
