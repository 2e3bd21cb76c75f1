package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/internal/dto"
	"clipforge/internal/queue"
	"clipforge/internal/response"
	"clipforge/internal/storage"
	"clipforge/internal/taskrunner"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"
)

func (h *Handler) StartHighlightTask(c *gin.Context) {
	var req dto.StartHighlightTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartHighlightTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartHighlightTask received request", zap.Any("req", req))

	taskId := util.GenerateRandStringWithUpperLowerNum(12)
	videoPath := filepath.Clean(req.VideoPath)

	var err error
	if h.Queue != nil {
		h.markQueued(taskId, videoPath, req.Autonomous)
		err = h.Queue.EnqueueHighlightTask(queue.HighlightPayload{
			TaskID:      taskId,
			VideoPath:   videoPath,
			Count:       req.Count,
			GameContext: req.GameContext,
			Autonomous:  req.Autonomous,
			Reencode:    req.Reencode,
		})
	} else {
		err = h.Runner.SubmitHighlightTask(taskrunner.HighlightTaskPayload{
			TaskID:      taskId,
			VideoPath:   videoPath,
			Count:       req.Count,
			GameContext: req.GameContext,
			Autonomous:  req.Autonomous,
			Reencode:    req.Reencode,
		})
	}
	if err != nil {
		log.GetLogger().Error("StartHighlightTask submit err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "任务提交失败 Failed to submit task", err))
		return
	}

	response.Success(c, dto.StartHighlightTaskRes{TaskId: taskId})
}

func (h *Handler) GetHighlightTask(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		taskId = c.Param("taskId")
	}
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "参数错误 Invalid parameters")
		return
	}

	run, err := storage.GetRun(taskId)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "任务不存在 Task not found", err))
		return
	}

	response.Success(c, runToStatusRes(run))
}

func (h *Handler) GetRunHistory(c *gin.Context) {
	runs, err := storage.RunHistory(50)
	if err != nil {
		log.GetLogger().Error("GetRunHistory err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "查询历史失败 Failed to query history", err))
		return
	}

	items := make([]dto.HighlightTaskStatusRes, 0, len(runs))
	for i := range runs {
		items = append(items, runToStatusRes(&runs[i]))
	}
	response.Success(c, items)
}

func (h *Handler) DeleteRun(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.Error(c, apperrors.CodeInvalidParams, "参数错误 Invalid parameters")
		return
	}

	if err := storage.DeleteRun(taskId); err != nil {
		log.GetLogger().Error("DeleteRun err", zap.String("task_id", taskId), zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeDBError, "删除失败 Failed to delete run", err))
		return
	}
	response.Success(c, nil)
}

func (h *Handler) markQueued(taskId, videoPath string, autonomous bool) {
	if storage.DB == nil {
		return
	}
	_ = storage.SaveRun(&types.HighlightRun{
		TaskId:     taskId,
		VideoPath:  videoPath,
		Status:     types.RunStatusProcessing,
		Autonomous: autonomous,
	})
}

func runToStatusRes(run *types.HighlightRun) dto.HighlightTaskStatusRes {
	res := dto.HighlightTaskStatusRes{
		TaskId:         run.TaskId,
		Status:         run.Status,
		FailReason:     run.FailReason,
		VideoName:      run.VideoName,
		ScenesDetected: run.ScenesDetected,
		ScenesAnalyzed: run.ScenesAnalyzed,
		ClipsExtracted: run.ClipsExtracted,
	}
	for _, clip := range run.Clips {
		res.Clips = append(res.Clips, types.ClipMeta{
			Rank:        clip.Rank,
			Timestamp:   clip.Timestamp,
			Duration:    clip.Duration,
			Score:       clip.Score,
			Description: clip.Description,
			Reasoning:   clip.Reasoning,
			File:        filepath.Base(clip.FilePath),
			Path:        clip.FilePath,
		})
	}
	return res
}
