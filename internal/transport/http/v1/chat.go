package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/omnichat/orchestrator/internal/domain"
)

// PostChat handles one inbound chat message.
// POST /v1/chat
func (h *Handler) PostChat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	resp, err := h.service.HandleMessage(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetConversation retrieves the full conversation for a session.
// GET /v1/chat/sessions/:session_id
func (h *Handler) GetConversation(c echo.Context) error {
	sessionID := c.Param("session_id")

	conv, err := h.service.GetConversation(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// GetSessionMessages retrieves recent messages for a session.
// GET /v1/chat/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	sessionID := c.Param("session_id")
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	messages, err := h.service.RecentMessages(c.Request().Context(), sessionID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

type switchChannelRequest struct {
	Channel domain.Channel `json:"channel"`
}

// SwitchChannel moves a session to another channel.
// POST /v1/chat/sessions/:session_id/channel
func (h *Handler) SwitchChannel(c echo.Context) error {
	sessionID := c.Param("session_id")

	var req switchChannelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	conv, err := h.service.SwitchChannel(c.Request().Context(), sessionID, req.Channel)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, conv)
}

// DeleteSession removes a session and its conversation.
// DELETE /v1/chat/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	if err := h.service.DestroySession(c.Request().Context(), sessionID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
