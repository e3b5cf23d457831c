package backend

import (
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestParseAPIError_Classification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind error
		wantCode string
	}{
		{"gotrue invalid grant", 400, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, common.ErrInvalidCredentials, "invalid_grant"},
		{"gotrue error_code", 400, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`, common.ErrInvalidCredentials, "invalid_credentials"},
		{"duplicate user", 422, `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`, common.ErrUserAlreadyExists, "user_already_exists"},
		{"weak password", 422, `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters."}`, common.ErrWeakPassword, "weak_password"},
		{"postgrest single row", 406, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`, common.ErrorNotFound, "PGRST116"},
		{"unauthorized", 401, `{"message":"JWT expired"}`, common.ErrorUnauthorized, ""},
		{"server error", 503, `not json`, common.ErrUnavailable, ""},
		{"plain bad request", 400, `{"message":"bad"}`, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.wantCode, err.Code)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
			} else {
				assert.Nil(t, errors.Unwrap(err))
			}
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestAPIError_MessageFallsBackToStatusText(t *testing.T) {
	err := parseAPIError(http.StatusBadGateway, nil)
	assert.Equal(t, "Bad Gateway", err.Message)
	assert.Contains(t, err.Error(), "502")
}
