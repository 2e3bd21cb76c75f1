package types

// HighlightScoreThreshold is the score at or above which a scene counts as a
// highlight.
const HighlightScoreThreshold = 70

// Scene is one candidate highlight interval of the source video. Scenes are
// immutable once built by the segmenter.
type Scene struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	MidPoint float64 `json:"mid_point"`
}

// ScoreRecord is the structured result of scoring one scene frame. At most
// one record exists per scene per run.
type ScoreRecord struct {
	SceneIndex  int     `json:"scene_index"`
	Score       int     `json:"score"`
	IsHighlight bool    `json:"is_highlight"`
	Description string  `json:"description"`
	Reasoning   string  `json:"reasoning"`
	Timestamp   float64 `json:"timestamp"`
}

// ScoredScene pairs a scene with its score record.
type ScoredScene struct {
	Scene Scene       `json:"scene"`
	Score ScoreRecord `json:"score"`
}

// RankedClip is a selected scene with its final rank and, once extraction
// succeeded, its output file.
type RankedClip struct {
	Rank       int         `json:"rank"`
	Scene      Scene       `json:"scene"`
	Score      ScoreRecord `json:"score"`
	OutputFile string      `json:"output_file"`
}

// VideoInfo is the media probe result.
type VideoInfo struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
}

// VideoMeta identifies the input video in the run result.
type VideoMeta struct {
	Path       string  `json:"path"`
	Name       string  `json:"name"`
	Duration   float64 `json:"duration"`
	Resolution string  `json:"resolution"`
}

// StageCounts records per-stage totals so callers can detect partial success.
type StageCounts struct {
	ScenesDetected int `json:"total_scenes_detected"`
	ScenesAnalyzed int `json:"scenes_analyzed"`
	ClipsExtracted int `json:"clips_extracted"`
}

// ClipMeta is one entry of the metadata sink record.
type ClipMeta struct {
	Rank        int     `json:"rank"`
	Timestamp   float64 `json:"timestamp"`
	Duration    float64 `json:"duration"`
	Score       int     `json:"score"`
	Description string  `json:"description"`
	Reasoning   string  `json:"reasoning"`
	File        string  `json:"file"`
	Path        string  `json:"path"`
}

// RunResult is the single metadata record written per run. It is assembled
// once and never updated afterwards.
type RunResult struct {
	Video      VideoMeta   `json:"video"`
	Processing StageCounts `json:"processing"`
	Clips      []ClipMeta  `json:"clips"`
}

// Run status values persisted with HighlightRun records.
const (
	RunStatusProcessing uint8 = iota + 1
	RunStatusDone
	RunStatusFailed
)
