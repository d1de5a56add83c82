package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/realtybot/internal/listing"
	"github.com/ent0n29/realtybot/internal/wizard"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// QuickReply is a tappable suggestion. Action is an intent label or a
// widget command understood by the controller.
type QuickReply struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

type Turn struct {
	ID           string                `json:"id"`
	Speaker      Speaker               `json:"speaker"`
	Text         string                `json:"text"`
	Timestamp    time.Time             `json:"timestamp"`
	Properties   []listing.PropertyRef `json:"properties,omitempty"`
	QuickReplies []QuickReply          `json:"quick_replies,omitempty"`
}

// Log is the append-only conversation transcript. Ids are unique and
// timestamps strictly increase. Not safe for concurrent use.
type Log struct {
	turns []Turn
	now   func() time.Time
}

func NewLog() *Log {
	return &Log{now: func() time.Time { return time.Now().UTC() }}
}

// Append stamps t with an id and timestamp when missing and adds it.
func (l *Log) Append(t Turn) Turn {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	ts := t.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}
	if n := len(l.turns); n > 0 {
		if last := l.turns[n-1].Timestamp; !ts.After(last) {
			ts = last.Add(time.Microsecond)
		}
	}
	t.Timestamp = ts
	l.turns = append(l.turns, t)
	return t
}

func (l *Log) Turns() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Last returns up to n most recent turns, oldest first.
func (l *Log) Last(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(l.turns) {
		n = len(l.turns)
	}
	out := make([]Turn, n)
	copy(out, l.turns[len(l.turns)-n:])
	return out
}

func (l *Log) Len() int { return len(l.turns) }

// Reset discards the transcript and appends turns in order.
func (l *Log) Reset(turns ...Turn) {
	l.turns = nil
	for _, t := range turns {
		l.Append(t)
	}
}

type UIState string

const (
	UIIdle          UIState = "idle"
	UIAwaitingReply UIState = "awaiting_reply"
	UILeadCapture   UIState = "lead_capture"
)

// Snapshot is the widget-facing view returned by every controller call.
type Snapshot struct {
	SessionID    string        `json:"session_id"`
	ClientID     string        `json:"client_id"`
	Turns        []Turn        `json:"turns"`
	UIState      UIState       `json:"ui_state"`
	LeadFormStep *int          `json:"lead_form_step"`
	LeadDraft    *wizard.Draft `json:"lead_draft,omitempty"`
	VoiceInput   bool          `json:"voice_input"`
	VoiceOutput  bool          `json:"voice_output"`
}
