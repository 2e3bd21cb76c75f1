package ranker

import (
	"testing"

	"clipforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(index, score int) types.ScoredScene {
	return types.ScoredScene{
		Scene: types.Scene{Index: index, Start: float64(index * 10), End: float64(index*10 + 5)},
		Score: types.ScoreRecord{SceneIndex: index, Score: score, IsHighlight: score >= types.HighlightScoreThreshold},
	}
}

func TestSelectTopK(t *testing.T) {
	input := []types.ScoredScene{
		scored(0, 40),
		scored(1, 90),
		scored(2, 70),
		scored(3, 85),
		scored(4, 30),
	}

	clips := Select(input, 2)
	require.Len(t, clips, 2)

	assert.Equal(t, 1, clips[0].Rank)
	assert.Equal(t, 1, clips[0].Scene.Index)
	assert.Equal(t, 90, clips[0].Score.Score)

	assert.Equal(t, 2, clips[1].Rank)
	assert.Equal(t, 3, clips[1].Scene.Index)
	assert.Equal(t, 85, clips[1].Score.Score)
}

func TestSelectTieBreaksByEarlierIndex(t *testing.T) {
	input := []types.ScoredScene{
		scored(2, 80),
		scored(0, 80),
		scored(1, 80),
	}

	clips := Select(input, 3)
	require.Len(t, clips, 3)
	assert.Equal(t, 0, clips[0].Scene.Index)
	assert.Equal(t, 1, clips[1].Scene.Index)
	assert.Equal(t, 2, clips[2].Scene.Index)
}

func TestSelectKBeyondInput(t *testing.T) {
	input := []types.ScoredScene{scored(0, 10), scored(1, 20)}

	clips := Select(input, 10)
	require.Len(t, clips, 2)
	assert.Equal(t, 1, clips[0].Scene.Index)
	assert.Equal(t, 0, clips[1].Scene.Index)
}

func TestSelectNonPositiveK(t *testing.T) {
	input := []types.ScoredScene{scored(0, 10)}
	assert.Empty(t, Select(input, 0))
	assert.Empty(t, Select(input, -1))
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	input := []types.ScoredScene{scored(0, 10), scored(1, 99)}
	_ = Select(input, 1)
	assert.Equal(t, 0, input[0].Scene.Index)
	assert.Equal(t, 1, input[1].Scene.Index)
}
