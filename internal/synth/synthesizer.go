// Package synth defines the boundary the job queue expects from a
// speech-synthesis engine and the voice catalog used to validate requests.
package synth

import "context"

// Synthesizer converts text to audio bytes for the given voice. It may be
// slow (seconds) and must be safely callable from multiple concurrent slots.
// Failures wrap domain.ErrSynthesisFailure.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Func adapts a plain function to the Synthesizer interface.
type Func func(ctx context.Context, text, voiceID string) ([]byte, error)

// Synthesize implements Synthesizer.
func (f Func) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	return f(ctx, text, voiceID)
}
