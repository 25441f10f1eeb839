package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/service"
	"github.com/dom/daily-chat/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(t *testing.T, method, url string, cookie *http.Cookie, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestChatHandler_GetState(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.NewUserBuilder().WithUsername("alice").BuildAndLogin(t, ts)

	resp := authedRequest(t, http.MethodGet, ts.APIURL("/chat/state"), cookie, nil)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var state service.ChatState
	testutil.AssertJSONResponse(t, resp, &state)

	assert.Equal(t, "alice", state.User.Username)
	require.NotNil(t, state.Session)
	assert.Equal(t, state.Session.StartTime.Add(24*time.Hour).Unix(), state.SessionExpiresAt.Unix())
	assert.Empty(t, state.Messages)
	assert.Empty(t, state.History)
}

func TestChatHandler_GetState_Unauthorized(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/chat/state"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestChatHandler_PostMessage(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, cookie := testutil.NewUserBuilder().WithUsername("bob").BuildAndLogin(t, ts)

	t.Run("valid message", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/messages"), cookie, map[string]string{
			"text": "hello everyone",
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var message domain.Message
		testutil.AssertJSONResponse(t, resp, &message)
		assert.Equal(t, user.ID, message.SenderID)
		assert.Equal(t, "hello everyone", message.Text)
		assert.NotEqual(t, uuid.Nil, message.SessionID)
	})

	t.Run("empty text", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/messages"), cookie, map[string]string{
			"text": "",
		})
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "between 1 and 1000")
	})

	t.Run("text too long", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/messages"), cookie, map[string]string{
			"text": strings.Repeat("a", 1001),
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/messages"), nil, map[string]string{
			"text": "hi",
		})
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAdminHandler_Authorization(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, userCookie := testutil.NewUserBuilder().WithUsername("alice").BuildAndLogin(t, ts)
	_, adminCookie := testutil.NewUserBuilder().WithUsername("root").AsAdmin().BuildAndLogin(t, ts)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/admin/reset"), userCookie, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		resp := authedRequest(t, http.MethodPost, ts.APIURL("/admin/reset"), nil, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("admin can reset", func(t *testing.T) {
		stateResp := authedRequest(t, http.MethodGet, ts.APIURL("/chat/state"), adminCookie, nil)
		var before service.ChatState
		testutil.AssertJSONResponse(t, stateResp, &before)
		stateResp.Body.Close()

		resp := authedRequest(t, http.MethodPost, ts.APIURL("/admin/reset"), adminCookie, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			Session *domain.ChatSession `json:"session"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		require.NotNil(t, body.Session)
		assert.NotEqual(t, before.Session.ID, body.Session.ID)
	})
}

func TestAdminHandler_Users(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, adminCookie := testutil.NewUserBuilder().WithUsername("root").AsAdmin().BuildAndLogin(t, ts)
	target, _ := testutil.NewUserBuilder().WithUsername("doomed").Build(t, ts.DB.DB)

	t.Run("list users", func(t *testing.T) {
		resp := authedRequest(t, http.MethodGet, ts.APIURL("/admin/users"), adminCookie, nil)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var body struct {
			Users []*domain.User `json:"users"`
		}
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Len(t, body.Users, 2)
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		resp := authedRequest(t, http.MethodDelete, ts.APIURL("/admin/users"), adminCookie, map[string]string{
			"userId": admin.ID.String(),
		})
		defer resp.Body.Close()
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "cannot delete your own account")
	})

	t.Run("delete another user", func(t *testing.T) {
		resp := authedRequest(t, http.MethodDelete, ts.APIURL("/admin/users"), adminCookie, map[string]string{
			"userId": target.ID.String(),
		})
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		listResp := authedRequest(t, http.MethodGet, ts.APIURL("/admin/users"), adminCookie, nil)
		defer listResp.Body.Close()
		var body struct {
			Users []*domain.User `json:"users"`
		}
		testutil.AssertJSONResponse(t, listResp, &body)
		assert.Len(t, body.Users, 1)
	})
}
