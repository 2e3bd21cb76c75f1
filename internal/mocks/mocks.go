// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"clipforge/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

// MockVisionCompleter is a mock implementation of types.VisionCompleter
type MockVisionCompleter struct {
	mock.Mock
}

func (m *MockVisionCompleter) VisionCompletion(ctx context.Context, image []byte, prompt string) (string, error) {
	args := m.Called(ctx, image, prompt)
	return args.String(0), args.Error(1)
}

// MockMediaProcessor is a mock implementation of types.MediaProcessor
type MockMediaProcessor struct {
	mock.Mock
}

func (m *MockMediaProcessor) Probe(ctx context.Context, videoPath string) (types.VideoInfo, error) {
	args := m.Called(ctx, videoPath)
	return args.Get(0).(types.VideoInfo), args.Error(1)
}

func (m *MockMediaProcessor) Keyframes(ctx context.Context, videoPath string) ([]float64, error) {
	args := m.Called(ctx, videoPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *MockMediaProcessor) ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string) error {
	args := m.Called(ctx, videoPath, timestamp, outputPath)
	return args.Error(0)
}

func (m *MockMediaProcessor) ExtractClip(ctx context.Context, videoPath string, start, duration float64, outputPath string, fastCopy bool) error {
	args := m.Called(ctx, videoPath, start, duration, outputPath, fastCopy)
	return args.Error(0)
}
