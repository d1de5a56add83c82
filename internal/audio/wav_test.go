package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := Silence(100*time.Millisecond, 8000)
	if len(pcm) != 1600 {
		t.Fatalf("len(Silence()) = %d, want 1600", len(pcm))
	}
	wav := EncodeWAV(pcm, 8000)
	if len(wav) != 44+len(pcm) {
		t.Fatalf("len(EncodeWAV()) = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("unexpected header markers: %q", wav[:44])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 8000 {
		t.Fatalf("sample rate = %d, want 8000", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", got, len(pcm))
	}
}

func TestSilenceNonPositiveDuration(t *testing.T) {
	if Silence(0, 0) != nil {
		t.Fatalf("Silence(0) should be nil")
	}
}
