package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("abc")
	assert.Error(t, err)
}

func TestIssueAndVerifyToken(t *testing.T) {
	m := testManager(t)

	token, err := m.IssueToken("user-123")
	require.NoError(t, err)

	userID, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyTokenRejections(t *testing.T) {
	m := testManager(t)

	_, err := m.VerifyToken("garbage")
	assert.Error(t, err)

	// Token signed with a different secret
	other, err := NewManager("other-secret", time.Hour)
	require.NoError(t, err)
	token, err := other.IssueToken("user-123")
	require.NoError(t, err)
	_, err = m.VerifyToken(token)
	assert.Error(t, err)

	// Expired token
	expired, err := NewManager("test-secret", time.Nanosecond)
	require.NoError(t, err)
	token, err = expired.IssueToken("user-123")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = m.VerifyToken(token)
	assert.Error(t, err)
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()
	require.NoError(t, err)
	b, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestMiddleware(t *testing.T) {
	m := testManager(t)
	token, err := m.IssueToken("user-42")
	require.NoError(t, err)

	var gotID string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "user-42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}
