package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/service"
)

type userMessagePayload struct {
	CarID   string `json:"carId"`
	Message string `json:"message"`
}

type userTypingPayload struct {
	CarID  string `json:"carId"`
	Typing bool   `json:"typing"`
}

type adminMessagePayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

type adminTypingPayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	Typing         bool   `json:"typing"`
}

// Relay routes socket events between connected clients and the persisted
// stores. Payloads are attacker-controlled: every field is checked before a
// store call, and malformed events are dropped without a reply except where
// an ack is expected.
type Relay struct {
	hub       *Hub
	chat      service.ChatService
	dashboard *Scheduler
}

func NewRelay(hub *Hub, chat service.ChatService, dashboard *Scheduler) *Relay {
	return &Relay{hub: hub, chat: chat, dashboard: dashboard}
}

func (r *Relay) Connect(c *Client) {
	if c.UserID != "" {
		r.hub.Join(c, UserRoom(c.UserID))
	}
}

func (r *Relay) Disconnect(c *Client) {
	r.hub.Remove(c)
	// No push work happens with zero admin viewers.
	if r.hub.RoomSize(AdminRoom) == 0 {
		r.dashboard.Stop()
	}
}

func (r *Relay) Dispatch(c *Client, frame inboundFrame) {
	switch frame.Event {
	case "admin:join":
		r.handleAdminJoin(c)
	case "user:message":
		r.handleUserMessage(c, frame.Data)
	case "user:typing":
		r.handleUserTyping(c, frame.Data)
	case "admin:message":
		r.handleAdminMessage(c, frame.Data)
	case "admin:typing":
		r.handleAdminTyping(c, frame.Data)
	}
}

func (r *Relay) handleAdminJoin(c *Client) {
	r.hub.Join(c, AdminRoom)
	r.dashboard.Start()
	r.dashboard.Force()
}

func (r *Relay) handleUserMessage(c *Client, raw json.RawMessage) {
	var p userMessagePayload
	if c.UserID == "" || json.Unmarshal(raw, &p) != nil || p.CarID == "" || p.Message == "" {
		return
	}
	res, err := r.chat.SendUserMessage(context.Background(), c.UserID, p.CarID, p.Message)
	if err != nil {
		log.Printf("[ws] user:message: %v", err)
		return
	}
	c.Send("user:message:ack", map[string]interface{}{
		"conversationId": res.ConversationID,
	})
	r.hub.Emit(AdminRoom, "admin:message", map[string]interface{}{
		"from":           res.From,
		"userId":         c.UserID,
		"carId":          res.CarID,
		"vendorId":       res.VendorID,
		"conversationId": res.ConversationID,
		"message":        p.Message,
		"ts":             time.Now().UnixMilli(),
	})
	r.dashboard.Push(false)
}

func (r *Relay) handleUserTyping(c *Client, raw json.RawMessage) {
	var p userTypingPayload
	if c.UserID == "" || json.Unmarshal(raw, &p) != nil || p.CarID == "" {
		return
	}
	convID, err := r.chat.ResolveConversation(context.Background(), c.UserID, p.CarID)
	if err != nil {
		log.Printf("[ws] user:typing: %v", err)
		return
	}
	r.hub.Emit(AdminRoom, "admin:typing", map[string]interface{}{
		"userId":         c.UserID,
		"conversationId": convID,
		"typing":         p.Typing,
	})
}

func (r *Relay) handleAdminMessage(c *Client, raw json.RawMessage) {
	var p adminMessagePayload
	if !c.InRoom(AdminRoom) || json.Unmarshal(raw, &p) != nil || p.UserID == "" || p.Message == "" {
		return
	}
	if p.ConversationID != "" {
		if err := r.chat.SendVendorMessage(context.Background(), p.ConversationID, p.Message); err != nil {
			log.Printf("[ws] admin:message: %v", err)
			return
		}
	}
	r.hub.Emit(UserRoom(p.UserID), "vendor:message", map[string]interface{}{
		"message":        p.Message,
		"conversationId": p.ConversationID,
		"ts":             time.Now().UnixMilli(),
	})
	r.dashboard.Push(false)
}

func (r *Relay) handleAdminTyping(c *Client, raw json.RawMessage) {
	var p adminTypingPayload
	if !c.InRoom(AdminRoom) || json.Unmarshal(raw, &p) != nil || p.UserID == "" {
		return
	}
	r.hub.Emit(UserRoom(p.UserID), "vendor:typing", map[string]interface{}{
		"typing":         p.Typing,
		"conversationId": p.ConversationID,
	})
}
