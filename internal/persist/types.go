// Package persist stores the text-only conversation, the memory slots and
// the voice-mute flag for each browser client under fixed keys.
package persist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ent0n29/realtybot/internal/memory"
)

const (
	KeyMessages   = "chatbot_messages"
	KeyMemory     = "chatbot_memory"
	KeyVoiceMuted = "chatbot_voice_muted"
)

// Values is the raw JSON stored per key for one client.
type Values map[string]json.RawMessage

// Store is the durable key/value session store.
type Store interface {
	Init(ctx context.Context) error
	Load(ctx context.Context, clientID string) (Values, error)
	Save(ctx context.Context, clientID string, values Values) error
	Clear(ctx context.Context, clientID string) error
	Close() error
}

// Pinger is implemented by stores backed by a network database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoredTurn is the text-only projection of a transcript turn. Result cards
// and quick replies are not persisted.
type StoredTurn struct {
	ID        string    `json:"id"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Snapshot struct {
	Turns      []StoredTurn
	Memory     memory.Slots
	VoiceMuted bool
}

// Decode turns raw values into a Snapshot. A key that is missing or fails
// to decode is treated as empty.
func Decode(values Values) Snapshot {
	var snap Snapshot
	if raw, ok := values[KeyMessages]; ok {
		var turns []StoredTurn
		if err := json.Unmarshal(raw, &turns); err == nil {
			snap.Turns = validTurns(turns)
		}
	}
	if raw, ok := values[KeyMemory]; ok {
		var slots memory.Slots
		if err := json.Unmarshal(raw, &slots); err == nil {
			snap.Memory = slots
		}
	}
	if raw, ok := values[KeyVoiceMuted]; ok {
		var muted bool
		if err := json.Unmarshal(raw, &muted); err == nil {
			snap.VoiceMuted = muted
		}
	}
	return snap
}

// validTurns drops entries that cannot be rendered and any entry whose
// timestamp does not advance, so a restored log keeps strict ordering.
func validTurns(turns []StoredTurn) []StoredTurn {
	out := make([]StoredTurn, 0, len(turns))
	var last time.Time
	for _, t := range turns {
		if t.Text == "" || (t.Speaker != "user" && t.Speaker != "assistant") {
			continue
		}
		if !last.IsZero() && !t.Timestamp.After(last) {
			continue
		}
		last = t.Timestamp
		out = append(out, t)
	}
	return out
}

func encode(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// EncodeSnapshot produces values for all three keys.
func EncodeSnapshot(snap Snapshot) (Values, error) {
	turns := snap.Turns
	if turns == nil {
		turns = []StoredTurn{}
	}
	values := Values{}
	var err error
	if values[KeyMessages], err = encode(turns); err != nil {
		return nil, err
	}
	if values[KeyMemory], err = encode(snap.Memory); err != nil {
		return nil, err
	}
	if values[KeyVoiceMuted], err = encode(snap.VoiceMuted); err != nil {
		return nil, err
	}
	return values, nil
}
