package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/rehabtracker/internal"
)

func newProvider() *SharedSecretProvider {
	return NewSharedSecretProvider("breathe-easy", "signing-key", internal.NewNopLogger())
}

func TestCheck(t *testing.T) {
	p := newProvider()
	assert.True(t, p.Check("breathe-easy"))
	for _, candidate := range []string{"", "breathe", "breathe-easy!", "xbreathe-easy", "BREATHE-EASY"} {
		assert.False(t, p.Check(candidate), candidate)
	}

	empty := NewSharedSecretProvider("", "", internal.NewNopLogger())
	assert.False(t, empty.Check(""))
}

func TestIssueAndValidate(t *testing.T) {
	p := newProvider()
	now := time.Now()
	token, err := p.Issue(now)
	require.NoError(t, err)
	assert.NoError(t, p.Validate(token, now))

	other := NewSharedSecretProvider("breathe-easy", "another-key", internal.NewNopLogger())
	assert.ErrorIs(t, other.Validate(token, now), internal.ErrUnauthorized)
	assert.ErrorIs(t, p.Validate("", now), internal.ErrUnauthorized)
	assert.ErrorIs(t, p.Validate("authenticated", now), internal.ErrUnauthorized)
}

func TestValidateUsesSuppliedClock(t *testing.T) {
	p := newProvider()
	issued := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	token, err := p.Issue(issued)
	require.NoError(t, err)

	assert.NoError(t, p.Validate(token, issued))
	assert.NoError(t, p.Validate(token, issued.Add(24*time.Hour)))
	assert.NoError(t, p.Validate(token, issued.Add(364*24*time.Hour)))
	assert.ErrorIs(t, p.Validate(token, issued.Add(366*24*time.Hour)), internal.ErrUnauthorized)
}

func TestValidateRejectsForeignSubjectAndAlgorithm(t *testing.T) {
	p := newProvider()
	now := time.Now()

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("signing-key"))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Validate(foreign, now), internal.ErrUnauthorized)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   sessionSubject,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("signing-key"))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Validate(hs512, now), internal.ErrUnauthorized)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: sessionSubject,
	}).SignedString([]byte("signing-key"))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Validate(noExpiry, now), internal.ErrUnauthorized)
}

func TestSigningKeyDefaultsToPassword(t *testing.T) {
	p := NewSharedSecretProvider("breathe-easy", "", internal.NewNopLogger())
	now := time.Now()
	token, err := p.Issue(now)
	require.NoError(t, err)
	assert.NoError(t, NewSharedSecretProvider("x", "breathe-easy", internal.NewNopLogger()).Validate(token, now))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newProvider()
	// A fixed clock far from the wall clock: sessions follow the app's time.
	clock := func() time.Time { return time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC) }
	token, err := p.Issue(clock())
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware(p, clock))
	r.GET("/private", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no session", func(r *http.Request) {}, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }, http.StatusOK},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"legacy marker", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: "authenticated"}) }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", nil)

	SetSessionCookie(c, "tok", true)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, CookieName, ck.Name)
	assert.Equal(t, "tok", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, int(SessionTTL.Seconds()), ck.MaxAge)
}
