// Package ffmpeg shells out to ffmpeg/ffprobe for probing, keyframe
// scanning, frame grabs and clip extraction.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipforge/internal/storage"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"

	"clipforge/internal/types"

	"go.uber.org/zap"
)

// Processor implements types.MediaProcessor on top of the ffmpeg binaries
// resolved in storage.FfmpegPath / storage.FfprobePath.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

type probeOutput struct {
	Streams []struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		CodecName string `json:"codec_name"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reads duration, resolution and codec of the video.
func (p *Processor) Probe(ctx context.Context, videoPath string) (types.VideoInfo, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return types.VideoInfo{}, apperrors.WrapWithDetail(apperrors.CodeInputNotFound, "Input video not found", videoPath, err)
	}

	cmd := exec.CommandContext(ctx, storage.FfprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,codec_name",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		log.GetLogger().Error("ffprobe failed", zap.String("video", videoPath), zap.Error(err))
		return types.VideoInfo{}, apperrors.Wrap(apperrors.CodeProbeFailed, "Video probe failed", err)
	}

	info, err := parseProbeOutput(output)
	if err != nil {
		return types.VideoInfo{}, err
	}
	info.Path = videoPath
	return info, nil
}

// Keyframes scans packet timestamps and returns those flagged as keyframes,
// in stream order.
func (p *Processor) Keyframes(ctx context.Context, videoPath string) ([]float64, error) {
	cmd := exec.CommandContext(ctx, storage.FfprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,flags",
		"-of", "csv=print_section:p=0",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		log.GetLogger().Error("ffprobe keyframe scan failed", zap.String("video", videoPath), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeKeyframeScanFailed, "Keyframe scan failed", err)
	}
	return parseKeyframes(string(output)), nil
}

// ExtractFrame grabs a single frame at timestamp as a JPEG. The fast seek
// (-ss before -i) is accurate enough for scoring snapshots.
func (p *Processor) ExtractFrame(ctx context.Context, videoPath string, timestamp float64, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeFrameExtractionFailed, "Frame extraction failed", err)
	}

	cmd := exec.CommandContext(ctx, storage.FfmpegPath,
		"-ss", formatSeconds(timestamp),
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.GetLogger().Error("ffmpeg frame extraction failed",
			zap.String("video", videoPath),
			zap.Float64("timestamp", timestamp),
			zap.String("output", string(output)),
			zap.Error(err))
		return apperrors.Wrap(apperrors.CodeFrameExtractionFailed, "Frame extraction failed", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeFrameExtractionFailed, "Frame extraction failed", "no output file produced", err)
	}
	return nil
}

// ExtractClip cuts [start, start+duration) into outputPath. fastCopy uses
// stream copy, which snaps to keyframes but avoids a re-encode.
func (p *Processor) ExtractClip(ctx context.Context, videoPath string, start, duration float64, outputPath string, fastCopy bool) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeClipExtractionFailed, "Clip extraction failed", err)
	}

	args := []string{
		"-ss", formatSeconds(start),
		"-i", videoPath,
		"-t", formatSeconds(duration),
	}
	if fastCopy {
		args = append(args, "-c", "copy", "-avoid_negative_ts", "1")
	} else {
		args = append(args,
			"-c:v", "libx264",
			"-preset", "fast",
			"-c:a", "aac",
			"-b:a", "192k",
		)
	}
	args = append(args, "-y", outputPath)

	cmd := exec.CommandContext(ctx, storage.FfmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		log.GetLogger().Error("ffmpeg clip extraction failed",
			zap.String("video", videoPath),
			zap.Float64("start", start),
			zap.Float64("duration", duration),
			zap.String("output", string(output)),
			zap.Error(err))
		return apperrors.Wrap(apperrors.CodeClipExtractionFailed, "Clip extraction failed", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return apperrors.WrapWithDetail(apperrors.CodeClipExtractionFailed, "Clip extraction failed", "no output file produced", err)
	}
	return nil
}

func parseProbeOutput(output []byte) (types.VideoInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return types.VideoInfo{}, apperrors.Wrap(apperrors.CodeProbeFailed, "Video probe failed", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return types.VideoInfo{}, apperrors.WrapWithDetail(apperrors.CodeProbeFailed, "Video probe failed", "invalid duration", err)
	}

	info := types.VideoInfo{Duration: duration}
	if len(probe.Streams) > 0 {
		info.Width = probe.Streams[0].Width
		info.Height = probe.Streams[0].Height
		info.Codec = probe.Streams[0].CodecName
	}
	return info, nil
}

// parseKeyframes picks pts_time values whose packet flags contain K. Lines
// that do not parse (side data, missing pts) are skipped.
func parseKeyframes(output string) []float64 {
	var keyframes []float64
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 2 {
			continue
		}
		if !strings.Contains(fields[1], "K") {
			continue
		}
		ts, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		keyframes = append(keyframes, ts)
	}
	return keyframes
}

func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
