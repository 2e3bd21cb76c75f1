// Package orchestrator runs the autonomous decide-execute loop: a reasoning
// model repeatedly picks the next pipeline tool until it declares the goal
// done or the iteration budget runs out.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"clipforge/internal/types"
	"clipforge/log"
	apperrors "clipforge/pkg/errors"
	"clipforge/pkg/util"

	"go.uber.org/zap"
)

// Decision is the JSON contract the model answers with.
type Decision struct {
	Tool      string                 `json:"tool"`
	Params    map[string]interface{} `json:"params"`
	Reasoning string                 `json:"reasoning"`
	Done      bool                   `json:"done"`
}

// ActionRecord is one executed (or refused) tool call.
type ActionRecord struct {
	Iteration int                    `json:"iteration"`
	Tool      string                 `json:"tool"`
	Params    map[string]interface{} `json:"params"`
	Reasoning string                 `json:"reasoning"`
	Result    string                 `json:"result"`
	Error     string                 `json:"error"`
}

func (r ActionRecord) Succeeded() bool {
	return r.Error == ""
}

type Config struct {
	MaxIterations  int
	HistoryWindow  int
	StrictOrdering bool
}

type Orchestrator struct {
	completer types.ChatCompleter
	registry  *Registry
	cfg       Config
}

func New(completer types.ChatCompleter, registry *Registry, cfg Config) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 20
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 5
	}
	return &Orchestrator{
		completer: completer,
		registry:  registry,
		cfg:       cfg,
	}
}

// Run drives the loop for the given goal. It returns the full action history
// in both outcomes; the error is nil when the model declared done, and an
// iteration-budget or decision error when it did not.
func (o *Orchestrator) Run(ctx context.Context, goal string) ([]ActionRecord, error) {
	var history []ActionRecord

	for iteration := 1; iteration <= o.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		prompt := o.buildPrompt(goal, history)
		raw, err := o.completer.ChatCompletion(prompt)
		if err != nil {
			return history, apperrors.Wrap(apperrors.CodeDecisionUnparsable, "Agent decision unparsable", err)
		}

		decision, err := parseDecision(raw)
		if err != nil {
			return history, err
		}

		log.GetLogger().Info("agent decision",
			zap.Int("iteration", iteration),
			zap.String("tool", decision.Tool),
			zap.Bool("done", decision.Done),
			zap.String("reasoning", util.TruncateRunes(decision.Reasoning, 200)))

		if decision.Done {
			return history, nil
		}

		tool, ok := o.registry.Lookup(decision.Tool)
		if !ok {
			suggestion := o.registry.Suggest(decision.Tool)
			return history, apperrors.WrapWithDetail(apperrors.CodeUnknownTool, "Agent picked unknown tool",
				fmt.Sprintf("%q (closest known tool: %q)", decision.Tool, suggestion), nil)
		}

		record := ActionRecord{
			Iteration: iteration,
			Tool:      tool.Name,
			Params:    decision.Params,
			Reasoning: decision.Reasoning,
		}

		if violation := o.orderingViolation(tool, history); violation != "" {
			record.Error = violation
			history = append(history, record)
			continue
		}

		result, err := tool.Run(ctx, decision.Params)
		if err != nil {
			record.Error = err.Error()
			log.GetLogger().Warn("agent tool failed",
				zap.Int("iteration", iteration),
				zap.String("tool", tool.Name),
				zap.Error(err))
		} else {
			record.Result = result
		}
		history = append(history, record)
	}

	return history, apperrors.WrapWithDetail(apperrors.CodeIterationBudget, "Agent iteration budget exhausted",
		fmt.Sprintf("%d iterations", o.cfg.MaxIterations), nil)
}

// orderingViolation enforces tool prerequisites when strict ordering is on.
// A violation is recorded as a failed action so the model can recover.
func (o *Orchestrator) orderingViolation(tool Tool, history []ActionRecord) string {
	if !o.cfg.StrictOrdering {
		return ""
	}
	for _, required := range tool.Requires {
		if !succeededBefore(history, required) {
			return apperrors.WrapWithDetail(apperrors.CodeOrderingViolation, "Workflow ordering violation",
				fmt.Sprintf("%s requires a successful %s first", tool.Name, required), nil).Error()
		}
	}
	return ""
}

func succeededBefore(history []ActionRecord, toolName string) bool {
	for _, record := range history {
		if record.Tool == toolName && record.Succeeded() {
			return true
		}
	}
	return false
}

func (o *Orchestrator) buildPrompt(goal string, history []ActionRecord) string {
	return fmt.Sprintf(types.DecisionPrompt, goal, o.registry.Catalogue(), progressSummary(history), renderHistory(history, o.cfg.HistoryWindow))
}

// parseDecision applies the same defensive cleanup as score parsing but is
// strict about the result: a decision that cannot be decoded, or that names
// no tool without being done, aborts the run.
func parseDecision(raw string) (Decision, error) {
	candidate := util.ExtractJsonFromText(util.StripReasoningTrace(raw))

	var decision Decision
	if err := json.Unmarshal([]byte(candidate), &decision); err != nil {
		return Decision{}, apperrors.WrapWithDetail(apperrors.CodeDecisionUnparsable, "Agent decision unparsable",
			util.TruncateRunes(raw, 200), err)
	}
	if !decision.Done && strings.TrimSpace(decision.Tool) == "" {
		return Decision{}, apperrors.WrapWithDetail(apperrors.CodeDecisionUnparsable, "Agent decision unparsable",
			"no tool named and not done", nil)
	}
	return decision, nil
}

// progressSummary condenses the whole history into the few facts the model
// needs: whether scenes exist, which were analyzed, what was extracted. It
// is recomputed from records every iteration rather than carried as state.
func progressSummary(history []ActionRecord) string {
	scenesDetected := false
	detectResult := ""
	analyzed := map[int]bool{}
	topScores := map[int]string{}
	clipsExtracted := 0

	for _, record := range history {
		if !record.Succeeded() {
			continue
		}
		switch record.Tool {
		case "detect_scenes":
			scenesDetected = true
			detectResult = record.Result
		case "analyze_scene":
			if index, ok := paramInt(record.Params, "scene_index"); ok {
				analyzed[index] = true
				topScores[index] = record.Result
			}
		case "extract_clip":
			clipsExtracted++
		}
	}

	var builder strings.Builder
	if scenesDetected {
		builder.WriteString(fmt.Sprintf("Scenes detected: %s\n", detectResult))
	} else {
		builder.WriteString("Scenes detected: none yet\n")
	}

	if len(analyzed) == 0 {
		builder.WriteString("Scenes analyzed: none\n")
	} else {
		indices := make([]int, 0, len(analyzed))
		for index := range analyzed {
			indices = append(indices, index)
		}
		sort.Ints(indices)
		builder.WriteString(fmt.Sprintf("Scenes analyzed: %v\n", indices))
		for _, index := range indices {
			builder.WriteString(fmt.Sprintf("  scene %d: %s\n", index, topScores[index]))
		}
	}

	builder.WriteString(fmt.Sprintf("Clips extracted: %d\n", clipsExtracted))
	return builder.String()
}

func renderHistory(history []ActionRecord, window int) string {
	if len(history) == 0 {
		return "(no actions yet)"
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}

	var builder strings.Builder
	for _, record := range history[start:] {
		if record.Succeeded() {
			builder.WriteString(fmt.Sprintf("%d. %s -> %s\n", record.Iteration, record.Tool, record.Result))
		} else {
			builder.WriteString(fmt.Sprintf("%d. %s -> FAILED: %s\n", record.Iteration, record.Tool, record.Error))
		}
	}
	return builder.String()
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch value := v.(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
