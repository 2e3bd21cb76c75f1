package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clipforge/config"
	"clipforge/internal/orchestrator"
	"clipforge/internal/scoring"
	"clipforge/internal/segmenter"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
	"clipforge/pkg/util"

	"go.uber.org/zap"
)

// runState is the mutable pipeline state the agent tools share during one
// autonomous run.
type runState struct {
	videoName string
	info      types.VideoInfo
	scenes    []types.Scene
	scored    map[int]types.ScoreRecord
	clips     []types.ClipMeta
	framesDir string
	clipsDir  string
}

// RunAutonomous hands control of the pipeline to the reasoning model: it
// decides which tool to call each iteration until it declares the goal done
// or the budget runs out. The run result is assembled from whatever state
// the agent left behind, even on failure.
func (s *Service) RunAutonomous(ctx context.Context, req ProcessRequest) (*types.RunResult, error) {
	req.normalize()

	framesDir, err := resolveFramesDir(req.TaskID)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(framesDir)

	videoName := util.SanitizePathName(strings.TrimSuffix(filepath.Base(req.VideoPath), filepath.Ext(req.VideoPath)))
	clipsDir, err := resolveClipsDir(videoName)
	if err != nil {
		return nil, err
	}

	state := &runState{
		videoName: videoName,
		scored:    map[int]types.ScoreRecord{},
		framesDir: framesDir,
		clipsDir:  clipsDir,
	}

	agent := orchestrator.New(s.ChatCompleter, s.buildRegistry(req, state), orchestrator.Config{
		MaxIterations:  config.Conf.Orchestrator.MaxIterations,
		HistoryWindow:  config.Conf.Orchestrator.HistoryWindow,
		StrictOrdering: config.Conf.Orchestrator.StrictOrdering,
	})

	goal := fmt.Sprintf("Extract the %d most exciting highlight clips from the video at %s and save them.", req.Count, req.VideoPath)
	history, runErr := agent.Run(ctx, goal)
	log.GetLogger().Info("autonomous run finished",
		zap.String("task", req.TaskID),
		zap.Int("actions", len(history)),
		zap.Bool("succeeded", runErr == nil))

	result := s.assembleAutonomousResult(req, state)
	if err := s.writeMetadata(videoName, result); err != nil {
		log.GetLogger().Error("failed to write autonomous metadata", zap.Error(err))
	}
	s.persistAutonomousRun(req, result, runErr)
	s.uploadArtifacts(ctx, req.TaskID, videoName, result)

	return result, runErr
}

func (s *Service) buildRegistry(req ProcessRequest, state *runState) *orchestrator.Registry {
	registry := orchestrator.NewRegistry()
	gateway := scoring.NewGateway(s.VisionCompleter, req.GameContext)

	registry.Register(orchestrator.Tool{
		Name:        "get_video_info",
		Description: "Probe the video for duration, resolution and codec.",
		Run: func(ctx context.Context, params map[string]interface{}) (string, error) {
			info, err := s.MediaProcessor.Probe(ctx, req.VideoPath)
			if err != nil {
				return "", err
			}
			state.info = info
			return fmt.Sprintf("duration %.1fs, %dx%d %s", info.Duration, info.Width, info.Height, info.Codec), nil
		},
	})

	registry.Register(orchestrator.Tool{
		Name:        "detect_scenes",
		Description: "Split the video into candidate scenes. Run once.",
		Requires:    []string{"get_video_info"},
		Run: func(ctx context.Context, params map[string]interface{}) (string, error) {
			if state.info.Duration <= 0 {
				info, err := s.MediaProcessor.Probe(ctx, req.VideoPath)
				if err != nil {
					return "", err
				}
				state.info = info
			}
			keyframes, err := s.MediaProcessor.Keyframes(ctx, req.VideoPath)
			if err != nil {
				keyframes = nil
			}
			scenes, err := segmenter.Segment(keyframes, state.info.Duration, segmenter.Bounds{
				Min: config.Conf.Highlight.MinSceneDuration,
				Max: config.Conf.Highlight.MaxSceneDuration,
			}, config.Conf.Highlight.MaxScenes)
			if err != nil {
				return "", err
			}
			state.scenes = scenes
			return fmt.Sprintf("%d scenes, indices 0-%d", len(scenes), len(scenes)-1), nil
		},
	})

	registry.Register(orchestrator.Tool{
		Name:        "analyze_scene",
		Description: "Score one scene by index. Never analyze the same index twice.",
		ParamSpec:   `{"scene_index": 0}`,
		Requires:    []string{"detect_scenes"},
		Run: func(ctx context.Context, params map[string]interface{}) (string, error) {
			index, ok := intParam(params, "scene_index")
			if !ok {
				return "", fmt.Errorf("scene_index param required")
			}
			if index < 0 || index >= len(state.scenes) {
				return "", fmt.Errorf("scene_index %d out of range (0-%d)", index, len(state.scenes)-1)
			}
			if _, done := state.scored[index]; done {
				return "", fmt.Errorf("scene %d already analyzed", index)
			}

			scene := state.scenes[index]
			record, ok := s.scoreScene(ctx, gateway, req.VideoPath, state.framesDir, scene)
			if !ok {
				return "", fmt.Errorf("could not grab a frame for scene %d", index)
			}
			state.scored[index] = record
			return fmt.Sprintf("score %d, highlight=%t, %q", record.Score, record.IsHighlight, record.Description), nil
		},
	})

	registry.Register(orchestrator.Tool{
		Name:        "extract_clip",
		Description: "Extract one analyzed scene as a clip file.",
		ParamSpec:   `{"scene_index": 0}`,
		Requires:    []string{"analyze_scene"},
		Run: func(ctx context.Context, params map[string]interface{}) (string, error) {
			index, ok := intParam(params, "scene_index")
			if !ok {
				return "", fmt.Errorf("scene_index param required")
			}
			record, analyzed := state.scored[index]
			if !analyzed {
				return "", fmt.Errorf("scene %d has not been analyzed", index)
			}

			scene := state.scenes[index]
			rank := len(state.clips) + 1
			fileName := fmt.Sprintf("highlight_%02d_score%d.mp4", rank, record.Score)
			outputPath := filepath.Join(state.clipsDir, fileName)

			if err := s.MediaProcessor.ExtractClip(ctx, req.VideoPath, scene.Start, scene.Duration, outputPath, !req.Reencode); err != nil {
				return "", err
			}
			state.clips = append(state.clips, types.ClipMeta{
				Rank:        rank,
				Timestamp:   scene.Start,
				Duration:    scene.Duration,
				Score:       record.Score,
				Description: record.Description,
				Reasoning:   record.Reasoning,
				File:        fileName,
				Path:        outputPath,
			})
			return fmt.Sprintf("saved %s", fileName), nil
		},
	})

	return registry
}

func (s *Service) assembleAutonomousResult(req ProcessRequest, state *runState) *types.RunResult {
	clips := make([]types.ClipMeta, len(state.clips))
	copy(clips, state.clips)
	sort.Slice(clips, func(i, j int) bool { return clips[i].Rank < clips[j].Rank })

	return &types.RunResult{
		Video: types.VideoMeta{
			Path:       req.VideoPath,
			Name:       state.videoName,
			Duration:   state.info.Duration,
			Resolution: fmt.Sprintf("%dx%d", state.info.Width, state.info.Height),
		},
		Processing: types.StageCounts{
			ScenesDetected: len(state.scenes),
			ScenesAnalyzed: len(state.scored),
			ClipsExtracted: len(clips),
		},
		Clips: clips,
	}
}

func (s *Service) persistAutonomousRun(req ProcessRequest, result *types.RunResult, runErr error) {
	if storage.DB == nil {
		return
	}
	if runErr == nil {
		s.persistRun(req, result, true)
		return
	}

	run := &types.HighlightRun{
		TaskId:         req.TaskID,
		VideoPath:      result.Video.Path,
		VideoName:      result.Video.Name,
		VideoDuration:  result.Video.Duration,
		Status:         types.RunStatusFailed,
		FailReason:     runErr.Error(),
		Autonomous:     true,
		ScenesDetected: result.Processing.ScenesDetected,
		ScenesAnalyzed: result.Processing.ScenesAnalyzed,
		ClipsExtracted: result.Processing.ClipsExtracted,
	}
	if err := storage.SaveRun(run); err != nil {
		log.GetLogger().Error("failed to persist failed run", zap.String("task", req.TaskID), zap.Error(err))
	}
}

func intParam(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch value := v.(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case string:
		var parsed int
		if _, err := fmt.Sscanf(value, "%d", &parsed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
