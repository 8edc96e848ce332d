// Package extract turns free text into structured extraction batches using an
// LLM behind the Extractor interface. Model output is defensively parsed:
// markdown fences are stripped and malformed JSON is repaired before the
// batch is accepted, and anything still unparsable is reported as an error so
// the caller can treat the text as "no update".
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/lifegraph-ai/lifegraph/pkg/types"
)

// Extractor produces an extraction batch from raw text.
type Extractor interface {
	Extract(ctx context.Context, text string, source types.SourceInfo) (*types.ExtractionResult, error)
}

// rawBatch is the JSON shape the model is asked to produce.
type rawBatch struct {
	Nodes []struct {
		Label      string                 `json:"label"`
		Type       string                 `json:"type"`
		Attributes map[string]interface{} `json:"attributes,omitempty"`
		Confidence float64                `json:"confidence"`
		Salience   float64                `json:"salience"`
	} `json:"nodes"`
	Edges []struct {
		Source     string   `json:"source"`
		Target     string   `json:"target"`
		Type       string   `json:"type"`
		Weight     int      `json:"weight"`
		Confidence float64  `json:"confidence"`
		Evidence   []string `json:"evidence,omitempty"`
	} `json:"edges"`
	Insights []string `json:"insights,omitempty"`
}

// ParseResponse decodes a model response into an extraction batch. Fenced
// code blocks are unwrapped and broken JSON is repaired first.
func ParseResponse(response string, source types.SourceInfo) (*types.ExtractionResult, error) {
	cleaned := StripFences(response)
	if cleaned == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	var raw rawBatch
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse extraction response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse repaired extraction response: %w", err)
		}
	}

	result := &types.ExtractionResult{Source: source, Insights: raw.Insights}
	for _, n := range raw.Nodes {
		if strings.TrimSpace(n.Label) == "" {
			continue
		}
		result.Nodes = append(result.Nodes, types.ExtractedNode{
			Label:      n.Label,
			Type:       n.Type,
			Attributes: n.Attributes,
			Confidence: clamp01(n.Confidence),
			Salience:   clamp01(n.Salience),
		})
	}
	for _, e := range raw.Edges {
		result.Edges = append(result.Edges, types.ExtractedEdge{
			SourceLabel: e.Source,
			TargetLabel: e.Target,
			Type:        e.Type,
			Weight:      e.Weight,
			Confidence:  clamp01(e.Confidence),
			Evidence:    e.Evidence,
		})
	}
	return result, nil
}

// StripFences unwraps a ```json ... ``` (or plain ```) fenced block and
// trims surrounding prose down to the outermost JSON object.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "```"); start >= 0 {
		rest := s[start+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
		s = strings.TrimSpace(s)
	}
	if open := strings.Index(s, "{"); open > 0 {
		if close := strings.LastIndex(s, "}"); close > open {
			s = s[open : close+1]
		}
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
