package livechat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wolfman30/telepsych-site/internal/analytics"
	"github.com/wolfman30/telepsych-site/pkg/logging"
	"golang.org/x/net/websocket"
)

// DefaultReplyDelay is how long the agent "types" before answering.
const DefaultReplyDelay = 1500 * time.Millisecond

const historyLimit = 50

// Observer records chat traffic.
type Observer interface {
	ObserveChatMessage(sender, topic string)
}

// Handler serves the chat widget over WebSocket and plain HTTP.
type Handler struct {
	responder  *Responder
	transcript TranscriptStore
	tracker    analytics.Client
	observer   Observer
	delay      time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

// Option customizes a Handler.
type Option func(*Handler)

func WithAnalytics(c analytics.Client) Option {
	return func(h *Handler) { h.tracker = analytics.OrNoop(c) }
}

func WithObserver(o Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// WithReplyDelay overrides the typing delay. Zero answers immediately.
func WithReplyDelay(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.delay = d
		}
	}
}

// NewHandler creates a chat handler. A nil transcript keeps history in memory.
func NewHandler(responder *Responder, transcript TranscriptStore, logger *logging.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if transcript == nil {
		transcript = NewMemoryTranscriptStore()
	}
	h := &Handler{
		responder:  responder,
		transcript: transcript,
		tracker:    analytics.Noop{},
		delay:      DefaultReplyDelay,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleWebSocket upgrades GET /api/chat/ws?session=... to a chat socket.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(r.Context(), conn, r.URL.Query().Get("session"))
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(ctx context.Context, conn *websocket.Conn, sessionID string) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := h.logger.With("session_id", sessionID)

	send := func(frame OutboundFrame) bool {
		if err := websocket.JSON.Send(conn, frame); err != nil {
			logger.Debug("livechat: send failed", "error", err)
			return false
		}
		return true
	}

	if !send(OutboundFrame{Type: "session", SessionID: sessionID, QuickActions: h.responder.QuickActions()}) {
		return
	}
	history, err := h.history(ctx, sessionID)
	if err != nil {
		logger.Warn("livechat: failed to load history", "error", err)
	}
	if !send(OutboundFrame{Type: "history", Messages: history}) {
		return
	}
	h.track(ctx, "chat_opened", "Live Chat Widget")
	logger.Info("livechat: connection opened")

	for {
		var in InboundFrame
		if err := websocket.JSON.Receive(conn, &in); err != nil {
			logger.Debug("livechat: connection closed", "error", err)
			return
		}

		switch in.Type {
		case "ping":
			send(OutboundFrame{Type: "pong"})
			continue
		case "quick_action":
			qa, ok := h.responder.QuickAction(in.Action)
			if !ok {
				send(OutboundFrame{Type: "error", Error: "unknown quick action"})
				continue
			}
			h.track(ctx, "chat_quick_action", qa.Action)
			if qa.Prompt == "" {
				send(OutboundFrame{Type: "action", Action: &qa})
				continue
			}
			in.Text = qa.Prompt
		case "message":
		default:
			continue
		}

		text := strings.TrimSpace(in.Text)
		if text == "" {
			continue
		}
		msgType := TypeText
		if in.Type == "quick_action" {
			msgType = TypeQuickAction
		}
		user := h.recordUser(ctx, sessionID, text, msgType)
		if !send(OutboundFrame{Type: "message", Message: &user}) || !send(OutboundFrame{Type: "typing"}) {
			return
		}
		reply, err := h.answer(ctx, sessionID, text)
		if err != nil {
			return
		}
		if !send(OutboundFrame{Type: "message", Message: &reply}) {
			return
		}
	}
}

// SendRequest is the body of POST /api/chat/messages.
type SendRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Action    string `json:"action,omitempty"`
}

// HandleMessage is the HTTP fallback: it answers after the typing delay.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid request body"})
		return
	}
	msgType := TypeText
	if req.Action != "" {
		qa, ok := h.responder.QuickAction(req.Action)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "unknown quick action"})
			return
		}
		h.track(r.Context(), "chat_quick_action", qa.Action)
		if qa.Prompt == "" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": req.SessionID, "action": qa})
			return
		}
		req.Text, msgType = qa.Prompt, TypeQuickAction
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "text is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
		if _, err := h.history(r.Context(), req.SessionID); err != nil {
			h.logger.Warn("livechat: failed to seed greeting", "error", err)
		}
	}

	user := h.recordUser(r.Context(), req.SessionID, text, msgType)
	reply, err := h.answer(r.Context(), req.SessionID, text)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "request cancelled"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": req.SessionID,
		"message":    user,
		"reply":      reply,
	})
}

// HandleHistory serves GET /api/chat/sessions/{sessionID}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "session id required"})
		return
	}
	msgs, err := h.transcript.List(r.Context(), sessionID, historyLimit*2)
	if err != nil {
		h.logger.Error("livechat: failed to load history", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to load history"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": msgs})
}

// history returns the recent transcript, seeding the greeting for new sessions.
func (h *Handler) history(ctx context.Context, sessionID string) ([]Message, error) {
	msgs, err := h.transcript.List(ctx, sessionID, historyLimit)
	if err != nil {
		return []Message{h.greeting()}, err
	}
	if len(msgs) > 0 {
		return msgs, nil
	}
	greeting := h.greeting()
	if err := h.transcript.Append(ctx, sessionID, greeting); err != nil {
		return []Message{greeting}, err
	}
	return []Message{greeting}, nil
}

func (h *Handler) greeting() Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      h.responder.Greeting(),
		Sender:    SenderAgent,
		Timestamp: h.now(),
		Type:      TypeText,
	}
}

func (h *Handler) recordUser(ctx context.Context, sessionID, text, msgType string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: h.now(),
		Type:      msgType,
	}
	if err := h.transcript.Append(ctx, sessionID, msg); err != nil {
		h.logger.Warn("livechat: failed to store message", "session_id", sessionID, "error", err)
	}
	h.track(ctx, "chat_interaction", "User Message")
	h.observe(SenderUser, "")
	return msg
}

// answer waits out the typing delay and records the agent reply.
func (h *Handler) answer(ctx context.Context, sessionID, text string) (Message, error) {
	if h.delay > 0 {
		timer := time.NewTimer(h.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Message{}, ctx.Err()
		case <-timer.C:
		}
	}

	topic, reply := h.responder.Reply(text)
	msg := Message{
		ID:        uuid.NewString(),
		Text:      reply,
		Sender:    SenderAgent,
		Timestamp: h.now(),
		Type:      TypeText,
		Topic:     topic,
	}
	if err := h.transcript.Append(ctx, sessionID, msg); err != nil {
		h.logger.Warn("livechat: failed to store reply", "session_id", sessionID, "error", err)
	}
	h.track(ctx, "chat_response", "Agent Response")
	h.observe(SenderAgent, topic)
	return msg, nil
}

func (h *Handler) track(ctx context.Context, name, label string) {
	h.tracker.Track(ctx, analytics.Event{Name: name, Category: analytics.CategoryLeadGeneration, Label: label})
}

func (h *Handler) observe(sender, topic string) {
	if h.observer != nil {
		h.observer.ObserveChatMessage(sender, topic)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
