// Package scoring rates scene frames through a vision model and turns the
// free-form responses into structured score records.
package scoring

import (
	"context"
	"fmt"
	"strings"

	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"

	"go.uber.org/zap"
)

// Gateway scores one frame per scene via the configured vision model.
type Gateway struct {
	completer   types.VisionCompleter
	gameContext string
}

func NewGateway(completer types.VisionCompleter, gameContext string) *Gateway {
	return &Gateway{
		completer:   completer,
		gameContext: gameContext,
	}
}

// Score sends the frame with the rating prompt and parses the response. A
// transport failure maps to ScoringUnavailable, an empty response to
// ScoringUnparsable; everything else parses into a record.
func (g *Gateway) Score(ctx context.Context, frame []byte, scene types.Scene) (types.ScoreRecord, error) {
	prompt := fmt.Sprintf(types.ScoringPrompt, scene.MidPoint)
	if g.gameContext != "" {
		prompt += fmt.Sprintf(types.ScoringContextLine, g.gameContext)
	}

	raw, err := g.completer.VisionCompletion(ctx, frame, prompt)
	if err != nil {
		log.GetLogger().Warn("scene scoring request failed",
			zap.Int("scene", scene.Index),
			zap.Error(err))
		return types.ScoreRecord{}, apperrors.Wrap(apperrors.CodeScoringUnavailable, "Scoring service unavailable", err)
	}
	if strings.TrimSpace(raw) == "" {
		return types.ScoreRecord{}, apperrors.WrapWithDetail(apperrors.CodeScoringUnparsable, "Scoring response unparsable", "empty response", nil)
	}

	record := ParseScoreResponse(raw, scene.Index, scene.MidPoint)
	log.GetLogger().Debug("scene scored",
		zap.Int("scene", scene.Index),
		zap.Int("score", record.Score),
		zap.Bool("highlight", record.IsHighlight))
	return record, nil
}
