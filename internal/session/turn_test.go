package session

import (
	"testing"
	"time"
)

func TestLogAssignsUniqueIDsAndIncreasingTimestamps(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLog()
	l.now = func() time.Time { return fixed }

	for i := 0; i < 5; i++ {
		l.Append(Turn{Speaker: SpeakerUser, Text: "hi"})
	}

	seen := map[string]bool{}
	turns := l.Turns()
	for i, turn := range turns {
		if turn.ID == "" || seen[turn.ID] {
			t.Fatalf("turn %d has empty or duplicate id %q", i, turn.ID)
		}
		seen[turn.ID] = true
		if i > 0 && !turn.Timestamp.After(turns[i-1].Timestamp) {
			t.Fatalf("turn %d timestamp %v not after %v", i, turn.Timestamp, turns[i-1].Timestamp)
		}
	}
}

func TestLogLastAndReset(t *testing.T) {
	l := NewLog()
	for _, text := range []string{"a", "b", "c"} {
		l.Append(Turn{Speaker: SpeakerAssistant, Text: text})
	}
	last := l.Last(2)
	if len(last) != 2 || last[0].Text != "b" || last[1].Text != "c" {
		t.Fatalf("Last(2) = %+v, want b, c", last)
	}
	if got := len(l.Last(10)); got != 3 {
		t.Fatalf("len(Last(10)) = %d, want 3", got)
	}
	if l.Last(0) != nil {
		t.Fatalf("Last(0) should be nil")
	}

	l.Reset(Turn{Speaker: SpeakerAssistant, Text: "welcome"})
	if l.Len() != 1 || l.Turns()[0].Text != "welcome" {
		t.Fatalf("Reset() left %+v", l.Turns())
	}
}

func TestLogTurnsReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Append(Turn{Speaker: SpeakerUser, Text: "hi"})
	turns := l.Turns()
	turns[0].Text = "mutated"
	if l.Turns()[0].Text != "hi" {
		t.Fatalf("Turns() exposed internal slice")
	}
}
