package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ToolFunc executes one pipeline action. The returned string is fed back to
// the model through the execution history.
type ToolFunc func(ctx context.Context, params map[string]interface{}) (string, error)

// Tool is one action the agent may pick. Requires lists tool names that must
// have succeeded at least once before this tool may run.
type Tool struct {
	Name        string
	Description string
	ParamSpec   string
	Requires    []string
	Run         ToolFunc
}

// Registry holds the tools in registration order.
type Registry struct {
	tools []Tool
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: map[string]int{}}
}

func (r *Registry) Register(tool Tool) {
	r.index[tool.Name] = len(r.tools)
	r.tools = append(r.tools, tool)
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// Suggest returns the registered tool name closest to the given one, for
// error messages when the model invents a tool.
func (r *Registry) Suggest(name string) string {
	best := ""
	bestDistance := -1
	for _, tool := range r.tools {
		distance := levenshtein.DistanceForStrings([]rune(name), []rune(tool.Name), levenshtein.DefaultOptions)
		if bestDistance < 0 || distance < bestDistance {
			best = tool.Name
			bestDistance = distance
		}
	}
	return best
}

// Catalogue renders the tool list for the decision prompt.
func (r *Registry) Catalogue() string {
	var builder strings.Builder
	for _, tool := range r.tools {
		builder.WriteString(fmt.Sprintf("- %s: %s", tool.Name, tool.Description))
		if tool.ParamSpec != "" {
			builder.WriteString(fmt.Sprintf(" Params: %s", tool.ParamSpec))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
