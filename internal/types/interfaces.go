package types

import "context"

// ChatCompleter is a text-only LLM round trip, used by the orchestrator for
// tool decisions. Every call is stateless.
type ChatCompleter interface {
	ChatCompletion(prompt string) (string, error)
}

// VisionCompleter sends one image plus a prompt to the scoring model and
// returns the first-choice message content verbatim.
type VisionCompleter interface {
	VisionCompletion(ctx context.Context, image []byte, prompt string) (string, error)
}

// MediaProcessor wraps the external media tool. All calls are synchronous,
// overwrite existing outputs, and report failure via error rather than
// partial output.
type MediaProcessor interface {
	Probe(ctx context.Context, videoPath string) (VideoInfo, error)
	Keyframes(ctx context.Context, videoPath string) ([]float64, error)
	ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string) error
	ExtractClip(ctx context.Context, videoPath string, start, duration float64, outputPath string, fastCopy bool) error
}
