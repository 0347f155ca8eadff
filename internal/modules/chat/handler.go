package chat

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	chatcore "github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/domain"
	"github.com/nfrund/plug/internal/middleware"
	"github.com/nfrund/plug/internal/modules/chat/templates/components"
	"github.com/nfrund/plug/internal/rendering"
	"github.com/nfrund/plug/internal/websocket"
)

// MessageRequest is the DTO for an explicit send.
type MessageRequest struct {
	ID      string `param:"id" validate:"required"`
	Message string `form:"message" validate:"max=4000"`
}

// KeyRequest is the DTO for a keypress in the message input. Message carries
// the input field value at the time of the keypress.
type KeyRequest struct {
	ID      string `param:"id" validate:"required"`
	Key     string `form:"key" validate:"required"`
	Shift   bool   `form:"shift"`
	Message string `form:"message" validate:"max=4000"`
}

// Handler holds dependencies for the chat module's HTTP handlers.
type Handler struct {
	manager    *chatcore.Manager
	renderer   rendering.Renderer
	bridge     *websocket.Bridge
	liveReload bool
}

// NewHandler creates a new chat handler with its dependencies.
func NewHandler(manager *chatcore.Manager, renderer rendering.Renderer, bridge *websocket.Bridge, liveReload bool) *Handler {
	return &Handler{
		manager:    manager,
		renderer:   renderer,
		bridge:     bridge,
		liveReload: liveReload,
	}
}

// PageGet opens a conversation for this page view and renders the chat root.
func (h *Handler) PageGet(c echo.Context) error {
	conv := h.manager.Open(middleware.VisitorID(c))
	middleware.FromContext(c.Request().Context()).Debug("Chat page opened", "conversation_id", conv.ID())
	return h.renderer.RenderPage(c, http.StatusOK, components.Page(conv.Snapshot(), h.liveReload))
}

// MessagePost handles the explicit send action.
func (h *Handler) MessagePost(c echo.Context) error {
	var req MessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	conv, err := h.conversation(c, req.ID)
	if err != nil {
		return err
	}

	conv.SetInput(req.Message)
	_, err = conv.SubmitInput()
	return h.submitted(c, conv, err)
}

// KeysPost applies a keypress. Only Enter without shift submits; every other
// key is left to the browser and answered with 204.
func (h *Handler) KeysPost(c echo.Context) error {
	var req KeyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	conv, err := h.conversation(c, req.ID)
	if err != nil {
		return err
	}

	conv.SetInput(req.Message)
	_, handled, err := conv.HandleKey(chatcore.KeyPress{Key: req.Key, Shift: req.Shift})
	if !handled {
		return c.NoContent(http.StatusNoContent)
	}
	return h.submitted(c, conv, err)
}

// TranscriptGet re-renders the message list.
func (h *Handler) TranscriptGet(c echo.Context) error {
	conv, err := h.conversation(c, c.Param("id"))
	if err != nil {
		return err
	}
	return h.renderer.RenderPage(c, http.StatusOK, components.Transcript(conv.Messages()))
}

// SocketGet upgrades to the websocket that pushes this conversation's fragments.
func (h *Handler) SocketGet(c echo.Context) error {
	conv, err := h.conversation(c, c.Param("id"))
	if err != nil {
		return err
	}
	return h.bridge.Serve(c, conv.ID())
}

func (h *Handler) conversation(c echo.Context, id string) (*chatcore.Conversation, error) {
	conv, err := h.manager.Get(id, middleware.VisitorID(c))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "conversation not found").SetInternal(err)
	}
	return conv, nil
}

// submitted maps the result of a submission attempt to a response. Accepted
// messages answer with a fresh composer; the bubbles arrive over the socket.
func (h *Handler) submitted(c echo.Context, conv *chatcore.Conversation, err error) error {
	switch {
	case err == nil:
		return h.renderer.RenderPage(c, http.StatusOK, components.Composer(conv.ID(), conv.Input(), conv.CanSend()))
	case errors.Is(err, domain.ErrBlankMessage):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, domain.ErrAwaitingReply):
		return echo.NewHTTPError(http.StatusConflict, "a reply is still pending").SetInternal(err)
	case errors.Is(err, domain.ErrConversationClosed):
		return echo.NewHTTPError(http.StatusGone, "conversation has ended").SetInternal(err)
	default:
		return err
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request").SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}
