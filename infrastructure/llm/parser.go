package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloudmap-backend/application/ports"
	"cloudmap-backend/domain/architecture"
)

// modelResponse is the JSON object the prompts ask the model to return
type modelResponse struct {
	Nodes                  []architecture.Node `json:"nodes"`
	Edges                  []architecture.Edge `json:"edges"`
	Rationale              string              `json:"rationale"`
	ArchitectureSuggestion string              `json:"architectureSuggestion"`
	CDKCode                string              `json:"cdkCode"`
}

// stripFences removes a surrounding markdown code fence, if any
func stripFences(body string) string {
	s := strings.TrimSpace(body)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseSuggestion turns a raw completion into a Suggestion. A body that is not
// a JSON object is kept as Text with any code fence removed.
func ParseSuggestion(body string) (*ports.Suggestion, error) {
	cleaned := stripFences(body)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model response")
	}

	if !strings.HasPrefix(cleaned, "{") {
		return &ports.Suggestion{Text: cleaned}, nil
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	return &ports.Suggestion{
		Nodes:     resp.Nodes,
		Edges:     resp.Edges,
		Rationale: resp.Rationale,
		Text:      resp.ArchitectureSuggestion,
		Code:      resp.CDKCode,
	}, nil
}
