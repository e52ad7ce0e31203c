package apiv1

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	showerr "github.com/duetcast/duetcast/internal/errors"
	"github.com/duetcast/duetcast/server/middleware"
)

type startShowRequest struct {
	Topic string `json:"topic"`
}

// StartShow begins a new live show for the caller. A blank topic is rejected,
// and a show already running for the caller is cancelled and replaced.
func (s *APIV1Service) StartShow(c echo.Context) error {
	user := middleware.UserFromContext(c)

	if !s.startLimiter.Allow(fmt.Sprintf("start:%d", user.ID)) {
		return replyError(c, showerr.RateLimitExceeded("too many show starts, slow down"))
	}

	req := &startShowRequest{}
	if err := c.Bind(req); err != nil {
		return replyError(c, showerr.InvalidArgument("malformed request body"))
	}

	liveShow, err := s.Manager.StartShow(c.Request().Context(), user.ID, req.Topic)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusAccepted, liveShow.Snapshot())
}

// GetCurrentShow returns the caller's live show state, turns included.
func (s *APIV1Service) GetCurrentShow(c echo.Context) error {
	user := middleware.UserFromContext(c)

	liveShow, ok := s.Manager.GetShow(user.ID)
	if !ok {
		return replyError(c, showerr.ShowNotFound("no show is running"))
	}
	return c.JSON(http.StatusOK, liveShow.Snapshot())
}

// CancelShow stops the caller's live show. Turns generated so far remain
// visible on the returned snapshot but are never persisted.
func (s *APIV1Service) CancelShow(c echo.Context) error {
	user := middleware.UserFromContext(c)

	if err := s.Manager.CancelShow(user.ID); err != nil {
		return replyError(c, err)
	}
	slog.Info("show cancelled", "user", user.ID)
	return c.JSON(http.StatusOK, map[string]bool{"cancelled": true})
}

// SaveShow persists the caller's finished show as a conversation. Saving a
// running show is a client error; saving twice is a conflict.
func (s *APIV1Service) SaveShow(c echo.Context) error {
	user := middleware.UserFromContext(c)

	conversation, err := s.Manager.SaveShow(c.Request().Context(), user.ID)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}
