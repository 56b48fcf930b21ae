package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(testSecret, 7, "alice", time.Hour)
	require.NoError(t, err)

	c, err := ValidateToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "7", c.Subject)
}

func TestGenerateToken_WeakSecret(t *testing.T) {
	_, err := GenerateToken([]byte("short"), 1, "a", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestValidateToken_Rejects(t *testing.T) {
	tok, err := GenerateToken(testSecret, 1, "alice", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken([]byte("another-secret-another-secret-xx"), tok)
	assert.Error(t, err, "wrong secret")

	expired, err := GenerateToken(testSecret, 1, "alice", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(time.Second + 10*time.Millisecond)
	_, err = ValidateToken(testSecret, expired)
	assert.Error(t, err, "expired")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(testSecret, unsigned)
	assert.Error(t, err, "alg none")
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"  bob  ", "bob", false},
		{"<b>carol</b>", "carol", false},
		{"ab", "", true},
		{"<script>x</script>", "", true},
		{strings.Repeat("a", 65), "", true},
		{strings.Repeat("a", 64), strings.Repeat("a", 64), false},
	}
	for _, tt := range tests {
		got, err := NormalizeUsername(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidUsername, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPasswordHashing(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", h)
	assert.NoError(t, CheckPassword(h, "s3cret"))
	assert.ErrorIs(t, CheckPassword(h, "wrong"), ErrBadCredentials)

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestMiddleware(t *testing.T) {
	tok, err := GenerateToken(testSecret, 3, "dana", time.Hour)
	require.NoError(t, err)

	var seen *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context())
	}))

	t.Run("cookie", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
		assert.Equal(t, "dana", seen.Username)
	})

	t.Run("bearer", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
	})

	t.Run("invalid clears cookie", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Nil(t, seen)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	RequireAuthJSON(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &Claims{UserID: 1}))
	rec = httptest.NewRecorder()
	RequireAuth(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSetAndClearCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookie(rec, "abc", true)
	c := rec.Result().Cookies()[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 86400, c.MaxAge)

	rec = httptest.NewRecorder()
	ClearTokenCookie(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
