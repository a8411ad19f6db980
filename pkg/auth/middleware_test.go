package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-secret"

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func TestVerify(t *testing.T) {
	tok := mint(t, jwt.MapClaims{
		"sub":  "ann",
		"role": "caregiver",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	principal, role, err := verify(testSecret, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "ann", principal)
	assert.Equal(t, "caregiver", role)

	_, _, err = verify(testSecret, "")
	assert.Error(t, err)
	_, _, err = verify(testSecret, tok) // no Bearer prefix
	assert.Error(t, err)
	_, _, err = verify("wrong-secret", "Bearer "+tok)
	assert.Error(t, err)

	expired := mint(t, jwt.MapClaims{
		"sub": "ann",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	_, _, err = verify(testSecret, "Bearer "+expired)
	assert.Error(t, err)

	nosub := mint(t, jwt.MapClaims{"role": "client"})
	_, _, err = verify(testSecret, "Bearer "+nosub)
	assert.Error(t, err)
}

func TestMiddlewareInjectsContext(t *testing.T) {
	var gotPrincipal, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal = PrincipalFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	})
	h := Middleware(Config{JWTSecret: testSecret, RPS: 100, Burst: 100})(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/threads", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, jwt.MapClaims{"sub": "bob", "role": "client"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bob", gotPrincipal)
	assert.Equal(t, "client", gotRole)
}

func TestMiddlewareRateLimits(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Middleware(Config{JWTSecret: testSecret, RPS: 1, Burst: 2})(next)
	tok := mint(t, jwt.MapClaims{"sub": "ann"})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/threads", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	// a different principal has its own budget
	req := httptest.NewRequest(http.MethodGet, "/v1/threads", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, jwt.MapClaims{"sub": "bob"}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
