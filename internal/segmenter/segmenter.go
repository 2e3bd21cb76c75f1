// Package segmenter turns raw keyframe timestamps into a bounded list of
// candidate scenes for scoring.
package segmenter

import (
	"math"
	"sort"

	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"

	"github.com/samber/lo"
)

// Bounds restricts candidate scene durations, inclusive on both ends.
type Bounds struct {
	Min float64
	Max float64
}

const (
	fallbackChunkSeconds = 15.0
	fallbackMinChunks    = 3
	fallbackMinTail      = 1.0
)

// Segment builds candidate scenes from keyframe timestamps. Keyframes are
// deduplicated, sorted and truncated to maxScenes before the 0/duration
// boundaries are injected, so the candidate count may reach maxScenes+1.
// Consecutive boundary pairs whose duration falls outside bounds are dropped.
// When nothing survives the filter the video is split into equal chunks
// instead. Scene indices are always reassigned densely from 0 in emission
// order.
func Segment(keyframes []float64, videoDuration float64, bounds Bounds, maxScenes int) ([]types.Scene, error) {
	if videoDuration <= 0 {
		return nil, apperrors.ErrSegmentationEmpty
	}

	boundaries := lo.Filter(lo.Uniq(keyframes), func(ts float64, _ int) bool {
		return ts >= 0 && ts < videoDuration
	})
	sort.Float64s(boundaries)

	if maxScenes > 0 && len(boundaries) > maxScenes {
		boundaries = boundaries[:maxScenes]
	}

	if len(boundaries) == 0 || boundaries[0] != 0 {
		boundaries = append([]float64{0}, boundaries...)
	}
	boundaries = append(boundaries, videoDuration)

	var scenes []types.Scene
	for i := 0; i < len(boundaries)-1; i++ {
		start, end := boundaries[i], boundaries[i+1]
		duration := end - start
		if duration < bounds.Min || duration > bounds.Max {
			continue
		}
		scenes = append(scenes, newScene(len(scenes), start, end))
	}

	if len(scenes) == 0 {
		scenes = equalChunks(videoDuration)
	}
	if len(scenes) == 0 {
		return nil, apperrors.ErrSegmentationEmpty
	}

	return scenes, nil
}

// equalChunks is the fallback path: equal chunks of min(15s, duration/5),
// at least 3 chunks, dropping a trailing chunk shorter than 1s.
func equalChunks(videoDuration float64) []types.Scene {
	chunk := fallbackChunkSeconds
	if videoDuration/5 < chunk {
		chunk = videoDuration / 5
	}
	if chunk <= 0 {
		return nil
	}

	// Ceil so a partial tail chunk still covers the end of the video; the
	// tail is dropped below only when shorter than a second.
	numChunks := int(math.Ceil(videoDuration / chunk))
	if numChunks < fallbackMinChunks {
		numChunks = fallbackMinChunks
	}

	var scenes []types.Scene
	for i := 0; i < numChunks; i++ {
		start := float64(i) * chunk
		end := start + chunk
		if end > videoDuration {
			end = videoDuration
		}
		if end-start < fallbackMinTail {
			continue
		}
		scenes = append(scenes, newScene(len(scenes), start, end))
	}
	return scenes
}

func newScene(index int, start, end float64) types.Scene {
	return types.Scene{
		Index:    index,
		Start:    start,
		End:      end,
		Duration: end - start,
		MidPoint: (start + end) / 2,
	}
}
