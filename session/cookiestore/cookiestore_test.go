package cookiestore_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accesswash/portal/customers"
	"github.com/accesswash/portal/session"
	"github.com/accesswash/portal/session/cookiestore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testCustomer = customers.Customer{
	ID:            "cust-1",
	Email:         "jane@example.com",
	FirstName:     "Jane",
	LastName:      "Wanjiku",
	AccountNumber: "AW-100042",
}

// requestWithCookies builds a fresh request carrying the cookies a previous
// response set, mimicking the browser round trip.
func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	writer := cookiestore.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	customer := testCustomer
	require.NoError(t, writer.Save("acme", session.Session{
		AccessToken: "token-abc",
		Customer:    &customer,
	}))

	reader := cookiestore.New(httptest.NewRecorder(), requestWithCookies(rec.Result().Cookies()))
	sess, ok := reader.Load("acme")
	require.True(t, ok)
	require.Equal(t, "token-abc", sess.AccessToken)
	require.NotNil(t, sess.Customer)
	require.Equal(t, testCustomer, *sess.Customer)
}

func TestCookieAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	store := cookiestore.New(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		cookiestore.WithSecure(true),
		cookiestore.WithTTL(24*time.Hour),
	)

	customer := testCustomer
	require.NoError(t, store.Save("acme", session.Session{AccessToken: "tok", Customer: &customer}))

	cookies := rec.Result().Cookies()
	for _, name := range []string{"accesswash_token_acme", "accesswash_customer_acme"} {
		c := findCookie(t, cookies, name)
		require.True(t, c.HttpOnly, "%s must be HttpOnly", name)
		require.True(t, c.Secure, "%s must be Secure", name)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite, "%s must be SameSite=Strict", name)
		require.Equal(t, "/", c.Path)
		require.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
	}
}

func TestTenantIsolation(t *testing.T) {
	rec := httptest.NewRecorder()
	writer := cookiestore.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	acme := testCustomer
	utility := testCustomer
	utility.ID = "cust-2"
	utility.Email = "bob@example.com"

	require.NoError(t, writer.Save("acme", session.Session{AccessToken: "token-acme", Customer: &acme}))
	require.NoError(t, writer.Save("utility1", session.Session{AccessToken: "token-utility", Customer: &utility}))

	reader := cookiestore.New(httptest.NewRecorder(), requestWithCookies(rec.Result().Cookies()))

	acmeSess, ok := reader.Load("acme")
	require.True(t, ok)
	require.Equal(t, "token-acme", acmeSess.AccessToken)
	require.Equal(t, "cust-1", acmeSess.Customer.ID)

	utilitySess, ok := reader.Load("utility1")
	require.True(t, ok)
	require.Equal(t, "token-utility", utilitySess.AccessToken)
	require.Equal(t, "cust-2", utilitySess.Customer.ID)

	_, ok = reader.Load("other")
	require.False(t, ok)
}

func TestClearExpiresOnlyTenantCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	store := cookiestore.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, store.Clear("acme"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.Negative(t, c.MaxAge, "%s must be expired", c.Name)
		require.Empty(t, c.Value)
	}
	findCookie(t, cookies, "accesswash_token_acme")
	findCookie(t, cookies, "accesswash_customer_acme")
}

func TestTokenOnlySessionRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	writer := cookiestore.New(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, writer.Save("acme", session.Session{AccessToken: "token-abc"}))

	// No snapshot cookie may survive; a token-only save expires it so a
	// previously stored customer cannot resurrect authentication.
	snapshot := findCookie(t, rec.Result().Cookies(), "accesswash_customer_acme")
	require.Negative(t, snapshot.MaxAge)
	require.Empty(t, snapshot.Value)

	reader := cookiestore.New(httptest.NewRecorder(), requestWithCookies(rec.Result().Cookies()))
	sess, ok := reader.Load("acme")
	require.True(t, ok)
	require.Equal(t, "token-abc", sess.AccessToken)
	require.Nil(t, sess.Customer)
	require.False(t, sess.Authenticated())
}

func TestLoadNullSnapshotMeansNoCustomer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "accesswash_token_acme", Value: "token-abc"})
	r.AddCookie(&http.Cookie{
		Name:  "accesswash_customer_acme",
		Value: base64.RawURLEncoding.EncodeToString([]byte("null")),
	})

	store := cookiestore.New(httptest.NewRecorder(), r)
	sess, ok := store.Load("acme")
	require.True(t, ok)
	require.Nil(t, sess.Customer)
	require.False(t, sess.Authenticated())
}

func TestLoadMissingTokenMeansNoSession(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{
		Name:  "accesswash_customer_acme",
		Value: base64.RawURLEncoding.EncodeToString([]byte(`{"id":"cust-1"}`)),
	})

	store := cookiestore.New(httptest.NewRecorder(), r)
	_, ok := store.Load("acme")
	require.False(t, ok, "customer cookie alone is not a session")
}

func TestLoadCorruptCustomerCookieDegrades(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "not base64", value: "%%%not-base64%%%"},
		{name: "base64 but not json", value: base64.RawURLEncoding.EncodeToString([]byte("not json"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "accesswash_token_acme", Value: "token-abc"})
			r.AddCookie(&http.Cookie{Name: "accesswash_customer_acme", Value: tt.value})

			store := cookiestore.New(httptest.NewRecorder(), r)
			sess, ok := store.Load("acme")
			require.True(t, ok, "token survives a corrupt snapshot")
			require.Equal(t, "token-abc", sess.AccessToken)
			require.Nil(t, sess.Customer)
			require.False(t, sess.Authenticated())
		})
	}
}

func TestLoadExpiredJWTMeansNoSession(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "jane@example.com",
		"exp": now.Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "accesswash_token_acme", Value: signed})

	store := cookiestore.New(httptest.NewRecorder(), r, cookiestore.WithNow(func() time.Time { return now }))
	_, ok := store.Load("acme")
	require.False(t, ok)
}
