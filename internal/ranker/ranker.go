// Package ranker orders scored scenes and selects the top clips.
package ranker

import (
	"sort"

	"clipforge/internal/types"
)

// Select returns the top k scored scenes ordered by score descending, ties
// broken by the earlier scene index. k <= 0 selects nothing; k beyond the
// input selects everything. Ranks are assigned 1-based in selection order.
func Select(scored []types.ScoredScene, k int) []types.RankedClip {
	if k <= 0 || len(scored) == 0 {
		return nil
	}

	ordered := make([]types.ScoredScene, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score.Score != ordered[j].Score.Score {
			return ordered[i].Score.Score > ordered[j].Score.Score
		}
		return ordered[i].Scene.Index < ordered[j].Scene.Index
	})

	if k > len(ordered) {
		k = len(ordered)
	}

	clips := make([]types.RankedClip, 0, k)
	for i := 0; i < k; i++ {
		clips = append(clips, types.RankedClip{
			Rank:  i + 1,
			Scene: ordered[i].Scene,
			Score: ordered[i].Score,
		})
	}
	return clips
}
