package apiv1

import (
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	showerr "github.com/duetcast/duetcast/internal/errors"
	"github.com/duetcast/duetcast/plugin/markdown"
	"github.com/duetcast/duetcast/server/middleware"
	"github.com/duetcast/duetcast/store"
)

// Conversation is the API shape of a persisted transcript.
type Conversation struct {
	UID       string  `json:"uid"`
	Topic     string  `json:"topic"`
	CreatedTs int64   `json:"createdTs"`
	Turns     []*Turn `json:"turns,omitempty"`
}

// Turn is the API shape of one utterance.
type Turn struct {
	UID       string        `json:"uid"`
	Seq       int32         `json:"seq"`
	Speaker   store.Persona `json:"speaker"`
	Text      string        `json:"text"`
	CreatedTs int64         `json:"createdTs"`
}

func convertConversation(c *store.Conversation) *Conversation {
	out := &Conversation{
		UID:       c.UID,
		Topic:     c.Topic,
		CreatedTs: c.CreatedTs,
	}
	for _, t := range c.Turns {
		out.Turns = append(out.Turns, &Turn{
			UID:       t.UID,
			Seq:       t.Seq,
			Speaker:   t.Speaker,
			Text:      t.Text,
			CreatedTs: t.CreatedTs,
		})
	}
	return out
}

// ListConversations returns the caller's saved transcripts without turns.
// `filter` takes a CEL expression over topic and created_ts; `orderBy` takes
// "created_ts desc" (default), "created_ts asc", "topic asc" or "topic desc".
func (s *APIV1Service) ListConversations(c echo.Context) error {
	user := middleware.UserFromContext(c)

	list, err := s.Store.ListConversations(c.Request().Context(), user.ID)
	if err != nil {
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to list conversations"))
	}

	if expression := c.QueryParam("filter"); expression != "" {
		program, err := s.filterEngine.Compile(expression)
		if err != nil {
			return replyError(c, showerr.InvalidArgument("invalid filter expression"))
		}
		filtered := make([]*store.Conversation, 0, len(list))
		for _, conversation := range list {
			matched, err := program.Match(conversation)
			if err != nil {
				return replyError(c, showerr.InvalidArgument("failed to evaluate filter"))
			}
			if matched {
				filtered = append(filtered, conversation)
			}
		}
		list = filtered
	}

	list = append([]*store.Conversation(nil), list...)
	switch c.QueryParam("orderBy") {
	case "", "created_ts desc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedTs > list[j].CreatedTs })
	case "created_ts asc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedTs < list[j].CreatedTs })
	case "topic asc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].Topic < list[j].Topic })
	case "topic desc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].Topic > list[j].Topic })
	default:
		return replyError(c, showerr.InvalidArgument("unsupported orderBy"))
	}

	out := make([]*Conversation, 0, len(list))
	for _, conversation := range list {
		out = append(out, convertConversation(conversation))
	}
	return c.JSON(http.StatusOK, out)
}

// GetConversation returns one transcript with its turns. A transcript owned
// by someone else looks exactly like a missing one.
func (s *APIV1Service) GetConversation(c echo.Context) error {
	user := middleware.UserFromContext(c)
	uid := c.Param("uid")

	conversation, err := s.Store.GetConversation(c.Request().Context(), uid, user.ID)
	if err != nil {
		if err == store.ErrConversationNotFound {
			return replyError(c, showerr.ConversationNotFound(uid))
		}
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to get conversation"))
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}

// DeleteConversation removes one transcript. Deleting a missing or foreign
// transcript succeeds without effect.
func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	user := middleware.UserFromContext(c)
	uid := c.Param("uid")

	if err := s.Store.DeleteConversation(c.Request().Context(), uid, user.ID); err != nil {
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to delete conversation"))
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

// ExportConversation renders one transcript as a standalone HTML page.
func (s *APIV1Service) ExportConversation(c echo.Context) error {
	user := middleware.UserFromContext(c)
	uid := c.Param("uid")

	conversation, err := s.Store.GetConversation(c.Request().Context(), uid, user.ID)
	if err != nil {
		if err == store.ErrConversationNotFound {
			return replyError(c, showerr.ConversationNotFound(uid))
		}
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to get conversation"))
	}

	html, err := s.renderer.RenderTranscript(conversation)
	if err != nil {
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to render transcript"))
	}
	return c.HTML(http.StatusOK, html)
}

const maxRSSItemCount = 100

// ConversationsRSS serves the caller's saved transcripts as an RSS feed,
// newest first.
func (s *APIV1Service) ConversationsRSS(c echo.Context) error {
	user := middleware.UserFromContext(c)

	list, err := s.Store.ListConversations(c.Request().Context(), user.ID)
	if err != nil {
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to list conversations"))
	}
	list = append([]*store.Conversation(nil), list...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedTs > list[j].CreatedTs })

	baseURL := s.Profile.InstanceURL
	if baseURL == "" {
		baseURL = "http://" + c.Request().Host
	}

	feed := &feeds.Feed{
		Title:       "Duetcast conversations",
		Link:        &feeds.Link{Href: baseURL},
		Description: "Saved AI talk show transcripts",
		Created:     time.Now(),
	}
	for i, conversation := range list {
		if i >= maxRSSItemCount {
			break
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          conversation.UID,
			Title:       conversation.Topic,
			Link:        &feeds.Link{Href: baseURL + "/api/v1/conversations/" + conversation.UID},
			Description: markdown.TranscriptMarkdown(conversation),
			Created:     time.Unix(conversation.CreatedTs, 0),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return replyError(c, showerr.Wrap(err, showerr.ErrCodePersistenceFailed, "failed to build feed"))
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}
