package apiv1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/server/middleware"
	"github.com/duetcast/duetcast/server/show"
	"github.com/duetcast/duetcast/store"
	teststore "github.com/duetcast/duetcast/store/test"
)

// echoGenerator returns deterministic statements instantly.
type echoGenerator struct{}

func (echoGenerator) Opening(_ context.Context, topic string, persona store.Persona) (string, error) {
	return fmt.Sprintf("%s opens on %s", persona, topic), nil
}

func (echoGenerator) Reply(_ context.Context, _ string, persona store.Persona, previous string) (string, error) {
	return fmt.Sprintf("%s replies to %q", persona, previous), nil
}

type testEnv struct {
	echo    *echo.Echo
	store   *store.Store
	manager *show.Manager
	token   string
	user    *store.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	ts := teststore.NewTestingStore(ctx, t)
	user := teststore.CreateTestingUser(ctx, t, ts, "steve")

	token := "test-token-" + user.Username
	err := ts.CreateAccessToken(ctx, &store.AccessToken{
		UserID:    user.ID,
		TokenHash: middleware.HashToken(token),
	})
	require.NoError(t, err)

	manager := show.NewManager(echoGenerator{}, ts, show.Config{
		OpeningPersona: store.PersonaHumor,
		MaxTurns:       4,
		SettleDelay:    time.Millisecond,
	}, 4)
	t.Cleanup(manager.Shutdown)

	svc, err := NewAPIV1Service(&profile.Profile{Mode: "dev"}, ts, manager)
	require.NoError(t, err)

	e := echo.New()
	svc.RegisterRoutes(e)
	return &testEnv{echo: e, store: ts, manager: manager, token: token, user: user}
}

func (env *testEnv) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+env.token)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) waitFinished(t *testing.T) {
	t.Helper()
	s, ok := env.manager.GetShow(env.user.ID)
	require.True(t, ok)
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("show did not finish")
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shows/current", nil)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/shows/current", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer wrong-token")
	rec = httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShowLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/shows/current", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/shows", `{"topic":"Are puns the lowest form of humor?"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	env.waitFinished(t)

	rec = env.request(t, http.MethodGet, "/api/v1/shows/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap show.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, show.StateFinished, snap.State)
	require.Len(t, snap.Turns, 4)
	require.Equal(t, store.PersonaHumor, snap.Turns[0].Speaker)
	require.Equal(t, store.PersonaSerious, snap.Turns[1].Speaker)

	// Save once.
	rec = env.request(t, http.MethodPost, "/api/v1/shows/save", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var saved Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.UID)
	require.Len(t, saved.Turns, 4)

	// Saving again conflicts.
	rec = env.request(t, http.MethodPost, "/api/v1/shows/save", "")
	require.Equal(t, http.StatusConflict, rec.Code)

	// The transcript is readable back.
	rec = env.request(t, http.MethodGet, "/api/v1/conversations/"+saved.UID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, "Are puns the lowest form of humor?", fetched.Topic)
	require.Len(t, fetched.Turns, 4)
}

func TestStartShowRejectsBlankTopic(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{"topic":""}`, `{"topic":"   "}`, `{}`} {
		rec := env.request(t, http.MethodPost, "/api/v1/shows", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	rec := env.request(t, http.MethodGet, "/api/v1/shows/current", "")
	require.Equal(t, http.StatusNotFound, rec.Code, "blank topic must not create a show")
}

func TestSaveWithoutShow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/shows/save", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelShow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/shows/cancel", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/shows", `{"topic":"cancel me"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/shows/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/shows/current", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationListFilterAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mk := func(topic string, ts int64) {
		_, err := env.store.CreateConversation(ctx, env.user.ID, topic, []*store.Turn{
			{Speaker: store.PersonaHumor, Text: "ha", CreatedTs: ts},
		})
		require.NoError(t, err)
	}
	mk("alpha topic", 100)
	mk("beta topic", 200)
	mk("pizza night", 300)
	// Creation assigns CreatedTs = now, so order by topic is the stable axis here.

	rec := env.request(t, http.MethodGet, "/api/v1/conversations?orderBy=topic+asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	require.Equal(t, "alpha topic", list[0].Topic)
	require.Equal(t, "pizza night", list[2].Topic)

	rec = env.request(t, http.MethodGet, "/api/v1/conversations?filter="+urlEncode(`topic.contains("pizza")`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "pizza night", list[0].Topic)

	rec = env.request(t, http.MethodGet, "/api/v1/conversations?filter="+urlEncode(`topic.`), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/conversations?orderBy=nope", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteConversationIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.store.CreateConversation(ctx, env.user.ID, "to delete", []*store.Turn{
		{Speaker: store.PersonaHumor, Text: "bye"},
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodDelete, "/api/v1/conversations/"+conversation.UID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodDelete, "/api/v1/conversations/"+conversation.UID, "")
	require.Equal(t, http.StatusOK, rec.Code, "second delete must succeed")

	rec = env.request(t, http.MethodGet, "/api/v1/conversations/"+conversation.UID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportAndRSS(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	conversation, err := env.store.CreateConversation(ctx, env.user.ID, "export me", []*store.Turn{
		{Speaker: store.PersonaHumor, Text: "opening joke"},
		{Speaker: store.PersonaSerious, Text: "measured rebuttal"},
	})
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/conversations/"+conversation.UID+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "export me")
	require.Contains(t, rec.Body.String(), "Humor AI")
	require.Contains(t, rec.Body.String(), "opening joke")

	rec = env.request(t, http.MethodGet, "/api/v1/conversations/rss.xml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentType), "rss")
	require.Contains(t, rec.Body.String(), "<rss")
	require.Contains(t, rec.Body.String(), "export me")
}

func urlEncode(s string) string {
	replacer := strings.NewReplacer(
		" ", "%20",
		`"`, "%22",
		"(", "%28",
		")", "%29",
	)
	return replacer.Replace(s)
}
