package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"clipforge/config"
	"clipforge/internal/ranker"
	"clipforge/internal/scoring"
	"clipforge/internal/segmenter"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline stages reported through the progress callback.
const (
	StageProbe    = "probe"
	StageScenes   = "scenes"
	StageScoring  = "scoring"
	StageClips    = "clips"
	StageMetadata = "metadata"
	StageDone     = "done"
)

const metadataFileName = "metadata.json"

type ProcessRequest struct {
	VideoPath   string
	Count       int
	TaskID      string
	GameContext string
	Reencode    bool
	Progress    func(stage string, percent int)
}

func (req *ProcessRequest) report(stage string, percent int) {
	if req.Progress != nil {
		req.Progress(stage, percent)
	}
}

func (req *ProcessRequest) normalize() {
	if req.Count <= 0 {
		req.Count = config.Conf.Highlight.TopClipsCount
	}
	if strings.TrimSpace(req.TaskID) == "" {
		req.TaskID = util.GenerateRandStringWithUpperLowerNum(12)
	}
}

// ProcessVideo runs the fixed pipeline: probe, segment, score every scene,
// rank, extract the top clips and write the metadata record. Scenes whose
// scoring fails get a neutral default record; scenes whose frame cannot be
// grabbed are skipped entirely.
func (s *Service) ProcessVideo(ctx context.Context, req ProcessRequest) (*types.RunResult, error) {
	req.normalize()

	info, err := s.MediaProcessor.Probe(ctx, req.VideoPath)
	if err != nil {
		return nil, err
	}
	req.report(StageProbe, 5)

	videoName := util.SanitizePathName(strings.TrimSuffix(filepath.Base(req.VideoPath), filepath.Ext(req.VideoPath)))

	keyframes, err := s.MediaProcessor.Keyframes(ctx, req.VideoPath)
	if err != nil {
		// the segmenter falls back to equal chunks on an empty keyframe list
		log.GetLogger().Warn("keyframe scan failed, falling back to equal chunks",
			zap.String("video", req.VideoPath), zap.Error(err))
		keyframes = nil
	}

	scenes, err := segmenter.Segment(keyframes, info.Duration, segmenter.Bounds{
		Min: config.Conf.Highlight.MinSceneDuration,
		Max: config.Conf.Highlight.MaxSceneDuration,
	}, config.Conf.Highlight.MaxScenes)
	if err != nil {
		return nil, err
	}
	log.GetLogger().Info("scenes segmented",
		zap.String("task", req.TaskID),
		zap.Int("scenes", len(scenes)),
		zap.Float64("duration", info.Duration))
	req.report(StageScenes, 15)

	scored, err := s.scoreScenes(ctx, req, scenes)
	if err != nil {
		return nil, err
	}
	req.report(StageScoring, 70)

	selected := ranker.Select(scored, req.Count)

	clipsDir, err := resolveClipsDir(videoName)
	if err != nil {
		return nil, err
	}
	clips := s.extractClips(ctx, req, selected, clipsDir)
	req.report(StageClips, 90)

	result := &types.RunResult{
		Video: types.VideoMeta{
			Path:       req.VideoPath,
			Name:       videoName,
			Duration:   info.Duration,
			Resolution: fmt.Sprintf("%dx%d", info.Width, info.Height),
		},
		Processing: types.StageCounts{
			ScenesDetected: len(scenes),
			ScenesAnalyzed: len(scored),
			ClipsExtracted: len(clips),
		},
		Clips: clips,
	}

	if err := s.writeMetadata(videoName, result); err != nil {
		return nil, err
	}
	req.report(StageMetadata, 95)

	s.persistRun(req, result, false)
	s.uploadArtifacts(ctx, req.TaskID, videoName, result)
	req.report(StageDone, 100)
	return result, nil
}

// scoreScenes fans the scenes out to the vision model with bounded
// concurrency and returns the records re-sorted by scene index.
func (s *Service) scoreScenes(ctx context.Context, req ProcessRequest, scenes []types.Scene) ([]types.ScoredScene, error) {
	framesDir, err := resolveFramesDir(req.TaskID)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(framesDir)

	gateway := scoring.NewGateway(s.VisionCompleter, req.GameContext)

	concurrency := config.Conf.Highlight.ScoreConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	var scored []types.ScoredScene

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, scene := range scenes {
		scene := scene
		g.Go(func() error {
			record, ok := s.scoreScene(gctx, gateway, req.VideoPath, framesDir, scene)
			if !ok {
				return nil
			}
			mu.Lock()
			scored = append(scored, types.ScoredScene{Scene: scene, Score: record})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(scored) == 0 {
		return nil, apperrors.ErrAnalysisEmpty
	}
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Scene.Index < scored[j].Scene.Index
	})
	return scored, nil
}

// scoreScene grabs the midpoint frame and scores it. A scoring failure still
// yields a neutral record; only a failed frame grab skips the scene.
func (s *Service) scoreScene(ctx context.Context, gateway *scoring.Gateway, videoPath, framesDir string, scene types.Scene) (types.ScoreRecord, bool) {
	framePath := filepath.Join(framesDir, fmt.Sprintf("scene_%03d.jpg", scene.Index))
	if err := s.MediaProcessor.ExtractFrame(ctx, videoPath, scene.MidPoint, framePath); err != nil {
		log.GetLogger().Warn("frame grab failed, skipping scene",
			zap.Int("scene", scene.Index), zap.Error(err))
		return types.ScoreRecord{}, false
	}

	frame, err := os.ReadFile(framePath)
	if err != nil {
		log.GetLogger().Warn("frame read failed, skipping scene",
			zap.Int("scene", scene.Index), zap.Error(err))
		return types.ScoreRecord{}, false
	}

	record, err := gateway.Score(ctx, frame, scene)
	if err != nil {
		log.GetLogger().Warn("scene scoring failed, using default record",
			zap.Int("scene", scene.Index), zap.Error(err))
		return scoring.DefaultScoreRecord(scene.Index, scene.MidPoint), true
	}
	return record, true
}

// extractClips cuts the selected scenes. A failed extraction drops that clip
// and keeps going.
func (s *Service) extractClips(ctx context.Context, req ProcessRequest, selected []types.RankedClip, clipsDir string) []types.ClipMeta {
	var clips []types.ClipMeta
	for _, clip := range selected {
		fileName := fmt.Sprintf("highlight_%02d_score%d.mp4", clip.Rank, clip.Score.Score)
		outputPath := filepath.Join(clipsDir, fileName)

		err := s.MediaProcessor.ExtractClip(ctx, req.VideoPath, clip.Scene.Start, clip.Scene.Duration, outputPath, !req.Reencode)
		if err != nil {
			log.GetLogger().Warn("clip extraction failed, dropping clip",
				zap.Int("rank", clip.Rank),
				zap.Int("scene", clip.Scene.Index),
				zap.Error(err))
			continue
		}

		clips = append(clips, types.ClipMeta{
			Rank:        clip.Rank,
			Timestamp:   clip.Scene.Start,
			Duration:    clip.Scene.Duration,
			Score:       clip.Score.Score,
			Description: clip.Score.Description,
			Reasoning:   clip.Score.Reasoning,
			File:        fileName,
			Path:        outputPath,
		})
	}
	return clips
}

func (s *Service) writeMetadata(videoName string, result *types.RunResult) error {
	metadataDir, err := resolveMetadataDir(videoName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(metadataDir, 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Metadata write failed", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Metadata write failed", err)
	}
	path := filepath.Join(metadataDir, metadataFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.CodeFileWriteError, "Metadata write failed", err)
	}
	log.GetLogger().Info("metadata written", zap.String("path", path))
	return nil
}

// persistRun stores the run in the database when one is open. Persistence is
// best effort and never fails the pipeline.
func (s *Service) persistRun(req ProcessRequest, result *types.RunResult, autonomous bool) {
	if storage.DB == nil {
		return
	}

	run := &types.HighlightRun{
		TaskId:         req.TaskID,
		VideoPath:      result.Video.Path,
		VideoName:      result.Video.Name,
		VideoDuration:  result.Video.Duration,
		Status:         types.RunStatusDone,
		Autonomous:     autonomous,
		ScenesDetected: result.Processing.ScenesDetected,
		ScenesAnalyzed: result.Processing.ScenesAnalyzed,
		ClipsExtracted: result.Processing.ClipsExtracted,
	}
	for _, clip := range result.Clips {
		run.Clips = append(run.Clips, types.HighlightClip{
			Rank:        clip.Rank,
			Timestamp:   clip.Timestamp,
			Duration:    clip.Duration,
			Score:       clip.Score,
			IsHighlight: clip.Score >= types.HighlightScoreThreshold,
			Description: clip.Description,
			Reasoning:   clip.Reasoning,
			FilePath:    clip.Path,
		})
	}
	if err := storage.SaveRun(run); err != nil {
		log.GetLogger().Error("failed to persist run", zap.String("task", req.TaskID), zap.Error(err))
	}
}

// uploadArtifacts pushes the clips and metadata record to OSS when a client
// is configured. Upload failures are logged, not returned.
func (s *Service) uploadArtifacts(ctx context.Context, taskId, videoName string, result *types.RunResult) {
	if s.OssClient == nil {
		return
	}

	for _, clip := range result.Clips {
		if _, err := s.OssClient.UploadFile(ctx, taskId, clip.File, clip.Path); err != nil {
			log.GetLogger().Warn("clip upload failed", zap.String("file", clip.File), zap.Error(err))
		}
	}

	metadataDir, err := resolveMetadataDir(videoName)
	if err != nil {
		return
	}
	metadataPath := filepath.Join(metadataDir, metadataFileName)
	if _, err := s.OssClient.UploadFile(ctx, taskId, metadataFileName, metadataPath); err != nil {
		log.GetLogger().Warn("metadata upload failed", zap.Error(err))
	}
}
