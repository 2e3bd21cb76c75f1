package dto

import "clipforge/internal/types"

// StartHighlightTaskReq starts one highlight extraction run.
type StartHighlightTaskReq struct {
	VideoPath   string `json:"video_path" binding:"required"`
	Count       int    `json:"count"`
	GameContext string `json:"game_context"`
	Autonomous  bool   `json:"autonomous"`
	Reencode    bool   `json:"reencode"`
}

type StartHighlightTaskRes struct {
	TaskId string `json:"task_id"`
}

// HighlightTaskStatusRes reports the current state of a run.
type HighlightTaskStatusRes struct {
	TaskId         string           `json:"task_id"`
	Status         uint8            `json:"status"`
	FailReason     string           `json:"fail_reason,omitempty"`
	VideoName      string           `json:"video_name"`
	ScenesDetected int              `json:"scenes_detected"`
	ScenesAnalyzed int              `json:"scenes_analyzed"`
	ClipsExtracted int              `json:"clips_extracted"`
	Clips          []types.ClipMeta `json:"clips,omitempty"`
}
