package scoring

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"clipforge/internal/types"
	"clipforge/pkg/util"
)

const (
	defaultScore = 50

	maxReasoningRunes   = 500
	maxDescriptionRunes = 100

	// First-line fallback descriptions must be plausibly title-shaped.
	minDerivedDescriptionRunes = 10
)

// DefaultScoreRecord is the neutral record substituted when a scene could not
// be scored at all.
func DefaultScoreRecord(sceneIndex int, timestamp float64) types.ScoreRecord {
	return types.ScoreRecord{
		SceneIndex:  sceneIndex,
		Score:       defaultScore,
		IsHighlight: false,
		Description: types.DefaultSceneDescription,
		Reasoning:   "scoring unavailable",
		Timestamp:   timestamp,
	}
}

// ParseScoreResponse turns whatever the model said into a usable record. It
// is total: any input produces a record, never an error. Reasoning traces are
// stripped first, then the first JSON value is extracted and fields are
// salvaged individually. A score outside [0,100] is treated as absent.
func ParseScoreResponse(raw string, sceneIndex int, timestamp float64) types.ScoreRecord {
	cleaned := util.StripReasoningTrace(raw)
	candidate := util.ExtractJsonFromText(cleaned)

	record := types.ScoreRecord{
		SceneIndex: sceneIndex,
		Score:      defaultScore,
		Timestamp:  timestamp,
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &fields); err == nil {
		if v, ok := fields["score"].(float64); ok && v >= 0 && v <= 100 {
			record.Score = int(v)
		}
		if v, ok := fields["description"].(string); ok && strings.TrimSpace(v) != "" {
			record.Description = util.TruncateRunes(strings.TrimSpace(v), maxDescriptionRunes)
		}
		if v, ok := fields["reasoning"].(string); ok && strings.TrimSpace(v) != "" {
			record.Reasoning = util.TruncateRunes(strings.TrimSpace(v), maxReasoningRunes)
		}
	}

	if record.Description == "" {
		record.Description = deriveDescription(cleaned)
	}
	if record.Reasoning == "" {
		record.Reasoning = util.TruncateRunes(strings.TrimSpace(cleaned), maxReasoningRunes)
	}
	record.IsHighlight = record.Score >= types.HighlightScoreThreshold
	return record
}

func deriveDescription(text string) string {
	line := util.FirstNonEmptyLine(text)
	runes := utf8.RuneCountInString(line)
	if runes > minDerivedDescriptionRunes && runes < maxDescriptionRunes {
		return line
	}
	return types.DefaultSceneDescription
}
