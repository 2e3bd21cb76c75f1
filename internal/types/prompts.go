package types

// ScoringPrompt asks the vision model to rate one gaming frame. The numeric
// bands are fixed; the response contract is strict JSON, though the parser
// never relies on the model honoring that.
var ScoringPrompt = `Analyze this gaming screenshot at %.1fs.

Rate the excitement level from 0-100 based on:
- 90-100: Epic plays (triple kills, clutch moments, rare achievements)
- 70-89: Good plays (double kills, skillful shots, winning plays)
- 50-69: Decent moments (average gameplay, some action)
- 0-49: Boring (low action, menus, loading screens)

Look for: kill feeds, score changes, special effects, intense action, multiple enemies, health bars.

Respond with ONLY valid JSON:
{
    "score": 85,
    "reasoning": "why this score based on what you see",
    "description": "short catchy title for social media"
}
`

// ScoringContextLine is appended to the scoring prompt when the caller
// supplies extra context about the video.
var ScoringContextLine = "\nGame Context: %s\n"

// DecisionPrompt asks the reasoning model to pick the next pipeline tool.
var DecisionPrompt = `You are an autonomous agent extracting gaming highlights from videos.

Goal: %s

Available Tools:
%s

Progress:
%s

Execution History:
%s

Based on the goal and current state, decide your next action.
Detect scenes only once. Never analyze the same scene index twice.
Extract clips only after you have analyzed enough scenes to rank them.

Respond with ONLY valid JSON (no markdown, no explanations):
{
    "tool": "tool_name",
    "params": {"param": "value"},
    "reasoning": "why you chose this action",
    "done": false
}

Set "done": true when you've achieved the goal (extracted and saved the clips).
`

// DefaultSceneDescription is used when the scoring response carries no usable
// description.
const DefaultSceneDescription = "Gaming moment"
