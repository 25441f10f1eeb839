package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	return resp
}

func sessionCookie(t *testing.T, ts *testutil.TestServer, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == ts.Config.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, password := testutil.NewUserBuilder().WithUsername("alice").Build(t, ts.DB.DB)
	_, adminPassword := testutil.NewUserBuilder().WithUsername("root").AsAdmin().Build(t, ts.DB.DB)

	t.Run("successful login sets the session cookie", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "alice",
			"password": password,
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			User       domain.SessionUser `json:"user"`
			RedirectTo string             `json:"redirectTo"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "alice", body.User.Username)
		assert.Equal(t, "/chat", body.RedirectTo)

		cookie := sessionCookie(t, ts, resp)
		require.NotNil(t, cookie, "session cookie missing")
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, 24*60*60, cookie.MaxAge)
	})

	t.Run("admin login redirects to admin", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "root",
			"password": adminPassword,
			"asAdmin":  true,
		})
		defer resp.Body.Close()

		var body struct {
			RedirectTo string `json:"redirectTo"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "/admin", body.RedirectTo)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "alice",
			"password": "wrong",
		})
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid username or password")
	})

	t.Run("unknown user gets the same rejection", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "nobody",
			"password": "whatever",
		})
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid username or password")
	})

	t.Run("non-admin requesting admin access", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "alice",
			"password": password,
			"asAdmin":  true,
		})
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "Admin access denied")
	})

	t.Run("short username is a validation error", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/login"), map[string]interface{}{
			"username": "ab",
			"password": password,
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.NewUserBuilder().WithUsername("carol").BuildAndLogin(t, ts)

	req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
	require.NoError(t, err)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var me domain.SessionUser
	testutil.AssertJSONResponse(t, resp, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "carol", me.Username)
}

func TestAuthHandler_Me_Unauthorized(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("no cookie", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/auth/me"))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("garbled cookie", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: ts.Config.SessionCookieName, Value: "garbage"})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := postJSON(t, ts.APIURL("/auth/logout"), map[string]string{})
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	cookie := sessionCookie(t, ts, resp)
	require.NotNil(t, cookie, "logout must rewrite the session cookie")
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
