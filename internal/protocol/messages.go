package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ent0n29/realtybot/internal/listing"
	"github.com/ent0n29/realtybot/internal/session"
	"github.com/ent0n29/realtybot/internal/wizard"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserMessage       MessageType = "user_message"
	TypeQuickReply        MessageType = "quick_reply"
	TypeScheduleViewing   MessageType = "schedule_viewing"
	TypeLeadForm          MessageType = "lead_form"
	TypeClearConversation MessageType = "clear_conversation"
	TypeToggleVoiceInput  MessageType = "toggle_voice_input"
	TypeToggleVoiceOutput MessageType = "toggle_voice_output"
	TypeVoiceTranscript   MessageType = "voice_transcript"
	TypeVoiceError        MessageType = "voice_error"

	TypeSessionSnapshot MessageType = "session_snapshot"
	TypeAssistantAudio  MessageType = "assistant_audio"
	TypeErrorEvent      MessageType = "error_event"
)

// Lead form actions.
const (
	LeadActionNext   = "next"
	LeadActionBack   = "back"
	LeadActionSubmit = "submit"
	LeadActionCancel = "cancel"
)

const maxTextLen = 2000

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type UserMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type QuickReply struct {
	Type   MessageType `json:"type"`
	Action string      `json:"action"`
}

type ScheduleViewing struct {
	Type     MessageType         `json:"type"`
	Property listing.PropertyRef `json:"property"`
}

type LeadForm struct {
	Type   MessageType  `json:"type"`
	Action string       `json:"action"`
	Fields wizard.Draft `json:"fields"`
}

// Control covers the payload-free commands: clear and the voice toggles.
type Control struct {
	Type MessageType `json:"type"`
}

type VoiceTranscript struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

type VoiceError struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code,omitempty"`
	Detail string      `json:"detail,omitempty"`
}

type SessionSnapshot struct {
	Type     MessageType      `json:"type"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type AssistantAudio struct {
	Type        MessageType `json:"type"`
	SessionID   string      `json:"session_id"`
	TurnID      string      `json:"turn_id"`
	Format      string      `json:"format"`
	AudioBase64 string      `json:"audio_base64"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserMessage:
		var msg UserMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if err := ValidateText(msg.Text); err != nil {
			return nil, fmt.Errorf("invalid user_message: %w", err)
		}
		return msg, nil
	case TypeVoiceTranscript:
		var msg VoiceTranscript
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if err := ValidateText(msg.Text); err != nil {
			return nil, fmt.Errorf("invalid voice_transcript: %w", err)
		}
		return msg, nil
	case TypeQuickReply:
		var msg QuickReply
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.Action) == "" {
			return nil, errors.New("invalid quick_reply: action is required")
		}
		return msg, nil
	case TypeScheduleViewing:
		var msg ScheduleViewing
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case TypeLeadForm:
		var msg LeadForm
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		switch msg.Action {
		case LeadActionNext, LeadActionBack, LeadActionSubmit, LeadActionCancel:
		default:
			return nil, fmt.Errorf("invalid lead_form action %q", msg.Action)
		}
		return msg, nil
	case TypeClearConversation, TypeToggleVoiceInput, TypeToggleVoiceOutput:
		return Control{Type: env.Type}, nil
	case TypeVoiceError:
		var msg VoiceError
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// ValidateText checks typed or transcribed input before it reaches the
// dialogue controller.
func ValidateText(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("text is required")
	}
	if len(s) > maxTextLen {
		return fmt.Errorf("text exceeds %d bytes", maxTextLen)
	}
	return nil
}
