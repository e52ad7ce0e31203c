// Package apiv1 exposes the talk-show HTTP API.
package apiv1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	showerr "github.com/duetcast/duetcast/internal/errors"
	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/plugin/filter"
	"github.com/duetcast/duetcast/plugin/markdown"
	"github.com/duetcast/duetcast/server/middleware"
	"github.com/duetcast/duetcast/server/show"
	"github.com/duetcast/duetcast/store"
)

// APIV1Service holds the dependencies of the v1 REST handlers.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Manager *show.Manager

	filterEngine *filter.Engine
	renderer     *markdown.Renderer
	startLimiter *middleware.RateLimiter
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(p *profile.Profile, s *store.Store, m *show.Manager) (*APIV1Service, error) {
	engine, err := filter.NewEngine()
	if err != nil {
		return nil, err
	}
	return &APIV1Service{
		Profile:      p,
		Store:        s,
		Manager:      m,
		filterEngine: engine,
		renderer:     markdown.NewRenderer(),
		// One start per 2 seconds per user, with burst of 5.
		startLimiter: middleware.NewRateLimiter(2*time.Second, 5),
	}, nil
}

// RegisterRoutes mounts every v1 route under /api/v1 behind token auth.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1", middleware.Auth(s.Store))

	g.POST("/shows", s.StartShow)
	g.GET("/shows/current", s.GetCurrentShow)
	g.POST("/shows/cancel", s.CancelShow)
	g.POST("/shows/save", s.SaveShow)

	g.GET("/conversations", s.ListConversations)
	g.GET("/conversations/rss.xml", s.ConversationsRSS)
	g.GET("/conversations/:uid", s.GetConversation)
	g.DELETE("/conversations/:uid", s.DeleteConversation)
	g.GET("/conversations/:uid/export", s.ExportConversation)
}

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Code    showerr.ErrorCode `json:"code"`
	Message string            `json:"message"`
}

// replyError maps a ShowError code onto an HTTP status.
func replyError(c echo.Context, err error) error {
	code := showerr.GetCodeFromError(err, showerr.ErrCodePersistenceFailed)
	status := http.StatusInternalServerError
	switch code {
	case showerr.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case showerr.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case showerr.ErrCodeInvalidArgument, showerr.ErrCodeShowNotFinished:
		status = http.StatusBadRequest
	case showerr.ErrCodeShowNotFound, showerr.ErrCodeConversationNotFound:
		status = http.StatusNotFound
	case showerr.ErrCodeShowAlreadySaved:
		status = http.StatusConflict
	case showerr.ErrCodeShowBusy:
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if se, ok := err.(*showerr.ShowError); ok {
		message = se.Message
	}
	return c.JSON(status, &errorResponse{Code: code, Message: message})
}
