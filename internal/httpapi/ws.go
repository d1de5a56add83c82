package httpapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/dialogue"
	"github.com/ent0n29/realtybot/internal/protocol"
	"github.com/ent0n29/realtybot/internal/session"
	"github.com/ent0n29/realtybot/internal/voice"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 120 * time.Second
	wsReadLimit    = 64 << 10
)

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	c, err := s.hub.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.metrics.SessionEvent("ws_connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 64)
	enqueue := func(msg any) {
		select {
		case <-ctx.Done():
		case outbound <- msg:
		default:
			// Writes stay single-threaded; a saturated queue drops.
			s.metrics.WSMessage("outbound_dropped", string(messageTypeOf(msg)))
		}
	}

	detachAudio := c.AttachAudioSink(func(turnID string, a voice.Audio) {
		enqueue(protocol.AssistantAudio{
			Type:        protocol.TypeAssistantAudio,
			SessionID:   sessionID,
			TurnID:      turnID,
			Format:      a.Format,
			AudioBase64: base64.StdEncoding.EncodeToString(a.Data),
		})
	})
	defer detachAudio()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("websocket write failed", zap.String("session_id", sessionID), zap.Error(err))
					cancel()
					return
				}
				s.metrics.WSMessage("outbound", string(messageTypeOf(msg)))
			}
		}
	}()

	enqueue(snapshotMessage(c.Snapshot()))

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for ctx.Err() == nil {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			enqueue(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Retryable: false,
				Detail:    err.Error(),
			})
			continue
		}
		s.metrics.WSMessage("inbound", string(messageTypeOf(parsed)))
		if _, err := s.hub.Get(sessionID); err != nil {
			enqueue(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "session_expired",
				Detail:    "session ended; open a new one",
			})
			break
		}
		enqueue(snapshotMessage(dispatch(ctx, c, parsed)))
	}

	cancel()
	<-writerDone
	s.metrics.SessionEvent("ws_disconnected")
}

// dispatch maps one client message onto the controller.
func dispatch(ctx context.Context, c *dialogue.Controller, msg any) session.Snapshot {
	switch m := msg.(type) {
	case protocol.UserMessage:
		return c.SendUserMessage(ctx, m.Text)
	case protocol.VoiceTranscript:
		return c.SendUserMessage(ctx, m.Text)
	case protocol.QuickReply:
		return c.SelectQuickReply(ctx, m.Action)
	case protocol.ScheduleViewing:
		return c.ScheduleViewingFor(ctx, m.Property)
	case protocol.LeadForm:
		return applyLeadAction(ctx, c, m.Action, m.Fields)
	case protocol.VoiceError:
		return c.VoiceInputFailed(ctx)
	case protocol.Control:
		switch m.Type {
		case protocol.TypeClearConversation:
			return c.ClearConversation(ctx)
		case protocol.TypeToggleVoiceInput:
			return c.ToggleVoiceInput(ctx)
		case protocol.TypeToggleVoiceOutput:
			return c.ToggleVoiceOutput(ctx)
		}
	}
	return c.Snapshot()
}

func snapshotMessage(snap session.Snapshot) protocol.SessionSnapshot {
	return protocol.SessionSnapshot{Type: protocol.TypeSessionSnapshot, Snapshot: snap}
}

func messageTypeOf(v any) protocol.MessageType {
	switch m := v.(type) {
	case protocol.UserMessage:
		return m.Type
	case protocol.VoiceTranscript:
		return m.Type
	case protocol.QuickReply:
		return m.Type
	case protocol.ScheduleViewing:
		return m.Type
	case protocol.LeadForm:
		return m.Type
	case protocol.Control:
		return m.Type
	case protocol.VoiceError:
		return m.Type
	case protocol.SessionSnapshot:
		return m.Type
	case protocol.AssistantAudio:
		return m.Type
	case protocol.ErrorEvent:
		return m.Type
	default:
		return "unknown"
	}
}
