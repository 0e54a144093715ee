package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"staffclock/src/models"
	"staffclock/src/repository"
	"staffclock/src/services/users"
	"staffclock/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const secret = "test-secret"

func fakeGoogle(t *testing.T, userInfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userInfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newService(srv *httptest.Server, admins ...string) *GoogleService {
	return NewGoogleService(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost:8888/auth/google/callback",
		JWTSecret:    secret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	}, users.NewService(repository.NewMemoryUserRepository(), admins))
}

func TestAuthURLCarriesState(t *testing.T) {
	srv := fakeGoogle(t, `{}`)
	u, err := url.Parse(newService(srv).AuthURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "state-123", u.Query().Get("state"))
	assert.Equal(t, "cid", u.Query().Get("client_id"))
}

func TestProcessGoogleLogin(t *testing.T) {
	srv := fakeGoogle(t, `{"id":"g-42","email":"boss@example.com","verified_email":true,"name":"Boss"}`)
	svc := newService(srv, "boss@example.com")

	user, token, err := svc.ProcessGoogleLogin(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g-42", user.UID)
	assert.Equal(t, models.RoleAdmin, user.Role)

	claims, err := utils.ParseJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "g-42", claims.UserID)
	assert.Equal(t, "Boss", claims.Name)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestProcessGoogleLoginFailures(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		srv := fakeGoogle(t, `{}`)
		_, _, err := newService(srv).ProcessGoogleLogin(context.Background(), "bad-code")
		assert.ErrorContains(t, err, "exchange")
	})

	t.Run("unverified email", func(t *testing.T) {
		srv := fakeGoogle(t, fmt.Sprintf(`{"id":"g-1","email":"%s","verified_email":false}`, "x@example.com"))
		_, _, err := newService(srv).ProcessGoogleLogin(context.Background(), "good-code")
		assert.ErrorIs(t, err, ErrUnverifiedEmail)
	})
}
