// Package audio builds small PCM/WAV payloads for speech output.
package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	DefaultSampleRate = 16000
	bitsPerSample     = 16
	channels          = 1
)

// wavHeader is the canonical 44-byte RIFF/WAVE header for mono PCM16LE.
type wavHeader struct {
	RIFF          [4]byte
	ChunkSize     uint32
	WAVE          [4]byte
	Fmt           [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	DataSize      uint32
}

// EncodeWAV wraps raw PCM16LE mono samples in a WAV container.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	blockAlign := channels * bitsPerSample / 8
	h := wavHeader{
		RIFF:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(36 + len(pcm)),
		WAVE:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(pcm)
	return buf.Bytes()
}

// Silence returns d worth of zeroed PCM16LE mono samples.
func Silence(d time.Duration, sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if d <= 0 {
		return nil
	}
	samples := int(d.Seconds() * float64(sampleRate))
	return make([]byte, samples*channels*bitsPerSample/8)
}
