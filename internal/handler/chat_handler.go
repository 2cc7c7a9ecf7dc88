package handler

import (
	"errors"
	"net/http"

	"github.com/Ro-otman/vroomvtr/internal/service"
	"github.com/labstack/echo/v4"
)

type ChatHandler struct {
	chat service.ChatService
}

func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.chat.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing conversation id"))
	}
	if err := h.chat.MarkReadByUser(c.Request().Context(), convID, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to mark read"))
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *ChatHandler) UnreadTotal(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	total, err := h.chat.TotalUnreadForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to count unread"))
	}
	return c.JSON(http.StatusOK, map[string]int64{"unreadCount": total})
}

func (h *ChatHandler) AdminList(c echo.Context) error {
	list, err := h.chat.ListForAdmin(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ChatHandler) AdminMessages(c echo.Context) error {
	convID := c.Param("id")
	if convID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing conversation id"))
	}
	view, err := h.chat.AdminConversation(c.Request().Context(), convID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch messages"))
	}
	return c.JSON(http.StatusOK, view)
}
