package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	iss := newTestIssuer()

	pair, err := iss.Issue("42")
	require.NoError(t, err)

	id, err := iss.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	id, err = iss.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestParseRejects(t *testing.T) {
	iss := newTestIssuer()
	pair, err := iss.Issue("42")
	require.NoError(t, err)

	_, err = iss.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token is signed with another secret")

	_, err = iss.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewIssuer("other", "other", time.Minute, time.Minute)
	forged, err := other.Issue("42")
	require.NoError(t, err)
	_, err = iss.ParseAccess(forged.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// same secret for both kinds still keeps them apart
	shared := NewIssuer("s", "s", time.Minute, time.Minute)
	sp, err := shared.Issue("7")
	require.NoError(t, err)
	_, err = shared.ParseAccess(sp.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestParseExpired(t *testing.T) {
	iss := newTestIssuer()
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := iss.Issue("42")
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	iss := newTestIssuer()
	claims := Claims{Kind: kindAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.ParseAccess(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := newTestIssuer()
	pair, err := iss.Issue("42")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Middleware(iss), func(c *gin.Context) {
		c.String(http.StatusOK, ProviderID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, "42"},
		{"missing", "", http.StatusUnauthorized, "NO_AUTH_HEADER"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "INVALID_AUTH_HEADER"},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}
