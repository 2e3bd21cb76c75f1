package types

// HighlightRun is the persisted record of one pipeline run.
type HighlightRun struct {
	Id             int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	TaskId         string          `json:"task_id" gorm:"size:64;uniqueIndex"`
	VideoPath      string          `json:"video_path"`
	VideoName      string          `json:"video_name"`
	VideoDuration  float64         `json:"video_duration"`
	Status         uint8           `json:"status"`
	FailReason     string          `json:"fail_reason"`
	Autonomous     bool            `json:"autonomous"`
	ScenesDetected int             `json:"scenes_detected"`
	ScenesAnalyzed int             `json:"scenes_analyzed"`
	ClipsExtracted int             `json:"clips_extracted"`
	Clips          []HighlightClip `json:"clips" gorm:"foreignKey:RunId;references:Id;constraint:OnDelete:CASCADE"`
	CreateTime     int64           `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime     int64           `json:"update_time" gorm:"autoUpdateTime"`
}

func (HighlightRun) TableName() string {
	return "highlight_runs"
}

// HighlightClip is one extracted clip belonging to a run.
type HighlightClip struct {
	Id          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	RunId       int64   `json:"run_id" gorm:"index"`
	Rank        int     `json:"rank"`
	SceneIndex  int     `json:"scene_index"`
	Timestamp   float64 `json:"timestamp"`
	Duration    float64 `json:"duration"`
	Score       int     `json:"score"`
	IsHighlight bool    `json:"is_highlight"`
	Description string  `json:"description"`
	Reasoning   string  `json:"reasoning"`
	FilePath    string  `json:"file_path"`
}

func (HighlightClip) TableName() string {
	return "highlight_clips"
}
