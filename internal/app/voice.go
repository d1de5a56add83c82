package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/config"
	"github.com/ent0n29/realtybot/internal/observability"
	"github.com/ent0n29/realtybot/internal/voice"
)

// VoiceInfo describes the speech output backend for startup logs.
type VoiceInfo struct {
	Mode    string
	Detail  string
	VoiceID string
}

type speechSetup struct {
	speaker *voice.Speaker
	info    VoiceInfo
}

// resolveSpeech builds the speaker for assistant turns. Speech output is
// optional: a nil speaker means replies are text only.
func resolveSpeech(cfg config.Config, logger *zap.Logger, metrics *observability.Metrics) (speechSetup, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.TTSMode))
	if mode == "" {
		mode = "auto"
	}

	synth, err := voice.NewSynthesizer(voice.Config{
		Mode:    mode,
		HTTPURL: cfg.TTSHTTPURL,
		VoiceID: cfg.TTSVoiceID,
		Timeout: cfg.TTSTimeout,
	})
	if err != nil {
		return speechSetup{}, fmt.Errorf("speech output init failed: %w", err)
	}
	if synth == nil {
		return speechSetup{info: VoiceInfo{
			Mode:   "off",
			Detail: "speech output disabled (set TTS_HTTP_URL or TTS_MODE=mock)",
		}}, nil
	}

	detail := "mock silent synthesizer"
	switch mode {
	case "auto":
		detail = fmt.Sprintf("http synthesizer at %s with silent fallback", cfg.TTSHTTPURL)
	case "http":
		detail = fmt.Sprintf("http synthesizer at %s", cfg.TTSHTTPURL)
	}

	speaker := voice.NewSpeaker(synth, voice.SpeakerOptions{
		Timeout: cfg.TTSTimeout,
		Logger:  logger.Named("voice"),
		Metrics: metrics,
	})
	return speechSetup{
		speaker: speaker,
		info: VoiceInfo{
			Mode:    mode,
			Detail:  detail,
			VoiceID: cfg.TTSVoiceID,
		},
	}, nil
}
