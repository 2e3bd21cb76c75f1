package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"clipforge/config"
	"clipforge/internal/mocks"
	"clipforge/internal/types"
	apperrors "clipforge/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func agentDecision(tool, params string) string {
	return fmt.Sprintf(`{"tool": %q, "params": %s, "reasoning": "step", "done": false}`, tool, params)
}

const agentDone = `{"tool": "", "params": {}, "reasoning": "clips saved", "done": true}`

func TestRunAutonomousFullFlow(t *testing.T) {
	tempDir := setupTestEnv(t)

	media := new(mocks.MockMediaProcessor)
	vision := new(mocks.MockVisionCompleter)
	chat := new(mocks.MockChatCompleter)
	svc := &Service{MediaProcessor: media, VisionCompleter: vision, ChatCompleter: chat}

	media.On("Probe", mock.Anything, "/videos/match.mp4").
		Return(types.VideoInfo{Duration: 120, Width: 1920, Height: 1080, Codec: "h264"}, nil)
	media.On("Keyframes", mock.Anything, mock.Anything).
		Return([]float64{0, 10, 25, 40, 70}, nil)
	media.On("ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(frameWriter(t)).Return(nil)
	media.On("ExtractClip", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, true).
		Return(nil)

	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"score": 90, "description": "Triple Kill Ace Setup"}`, nil).Once()
	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"score": 45, "description": "Mid Round Rotation Play"}`, nil).Once()

	for _, raw := range []string{
		agentDecision("get_video_info", "{}"),
		agentDecision("detect_scenes", "{}"),
		agentDecision("analyze_scene", `{"scene_index": 1}`),
		agentDecision("analyze_scene", `{"scene_index": 0}`),
		agentDecision("extract_clip", `{"scene_index": 1}`),
		agentDone,
	} {
		chat.On("ChatCompletion", mock.Anything).Return(raw, nil).Once()
	}

	result, err := svc.RunAutonomous(context.Background(), ProcessRequest{
		VideoPath: "/videos/match.mp4",
		Count:     1,
		TaskID:    "task-agent",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Processing.ScenesDetected)
	assert.Equal(t, 2, result.Processing.ScenesAnalyzed)
	assert.Equal(t, 1, result.Processing.ClipsExtracted)
	require.Len(t, result.Clips, 1)
	assert.Equal(t, 90, result.Clips[0].Score)
	assert.Equal(t, "Triple Kill Ace Setup", result.Clips[0].Description)

	metadataPath := filepath.Join(tempDir, "output", "metadata", "match", "metadata.json")
	_, err = os.Stat(metadataPath)
	assert.NoError(t, err)

	chat.AssertExpectations(t)
	vision.AssertExpectations(t)
}

func TestRunAutonomousBudgetExhaustedKeepsPartialResult(t *testing.T) {
	setupTestEnv(t)
	config.Conf.Orchestrator.MaxIterations = 2

	media := new(mocks.MockMediaProcessor)
	chat := new(mocks.MockChatCompleter)
	svc := &Service{MediaProcessor: media, ChatCompleter: chat}

	media.On("Probe", mock.Anything, mock.Anything).
		Return(types.VideoInfo{Duration: 120}, nil)
	media.On("Keyframes", mock.Anything, mock.Anything).
		Return([]float64{0, 10, 25}, nil)

	chat.On("ChatCompletion", mock.Anything).Return(agentDecision("get_video_info", "{}"), nil).Once()
	chat.On("ChatCompletion", mock.Anything).Return(agentDecision("detect_scenes", "{}"), nil).Once()

	result, err := svc.RunAutonomous(context.Background(), ProcessRequest{VideoPath: "/videos/match.mp4"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeIterationBudget))
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Processing.ScenesDetected)
	assert.Equal(t, 0, result.Processing.ClipsExtracted)
}

func TestRunAutonomousRefusesDuplicateAnalysis(t *testing.T) {
	setupTestEnv(t)

	media := new(mocks.MockMediaProcessor)
	vision := new(mocks.MockVisionCompleter)
	chat := new(mocks.MockChatCompleter)
	svc := &Service{MediaProcessor: media, VisionCompleter: vision, ChatCompleter: chat}

	media.On("Probe", mock.Anything, mock.Anything).
		Return(types.VideoInfo{Duration: 120}, nil)
	media.On("Keyframes", mock.Anything, mock.Anything).
		Return([]float64{0, 10, 25}, nil)
	media.On("ExtractFrame", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(frameWriter(t)).Return(nil)

	vision.On("VisionCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"score": 60, "description": "A Decent Team Fight"}`, nil).Once()

	for _, raw := range []string{
		agentDecision("get_video_info", "{}"),
		agentDecision("detect_scenes", "{}"),
		agentDecision("analyze_scene", `{"scene_index": 0}`),
		agentDecision("analyze_scene", `{"scene_index": 0}`),
		agentDone,
	} {
		chat.On("ChatCompletion", mock.Anything).Return(raw, nil).Once()
	}

	result, err := svc.RunAutonomous(context.Background(), ProcessRequest{VideoPath: "/videos/match.mp4"})

	require.NoError(t, err)
	// the duplicate analysis was refused, the scene counts once
	assert.Equal(t, 1, result.Processing.ScenesAnalyzed)
	vision.AssertNumberOfCalls(t, "VisionCompletion", 1)
}
