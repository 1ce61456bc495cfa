package speech

import (
	"go.uber.org/zap"
)

// Params mirror the voice controls the mobile clients use when reading a
// distress call out loud.
type Params struct {
	Rate     float64
	Pitch    float64
	Volume   float64
	Language string
}

// Synthesizer is the text-to-speech channel. Implementations are
// fire-and-forget; the caller never depends on an utterance completing.
type Synthesizer interface {
	Speak(text string, params Params) error
}

// LogSynthesizer is the degraded channel used when no real synthesizer is
// wired up. A missing speech channel must never block an escalation, so it
// records the utterance and succeeds.
type LogSynthesizer struct {
	Logg *zap.SugaredLogger
}

func (s *LogSynthesizer) Speak(text string, params Params) error {
	s.Logg.Infow("speak", "text", text, "language", params.Language, "rate", params.Rate)
	return nil
}
