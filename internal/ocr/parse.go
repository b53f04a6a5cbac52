package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// detectionPrompt is the shared prompt used by the LLM-backed engines
const detectionPrompt = `You are an OCR engine reading a small cropped region of an identity card.
Read every piece of text in the image exactly as printed. Do not translate, correct or reformat anything.

Return ONLY a JSON array, one element per text line, in this exact format:
[
  {"text": "TEXT AS PRINTED", "confidence": 0.00}
]

Important:
- confidence is a number between 0 and 1 describing how sure you are about the line
- If there is no readable text, return []
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// buildPrompt appends the allowlist restriction to the detection prompt
func buildPrompt(allowlist Allowlist) string {
	if allowlist == AllowAll {
		return detectionPrompt
	}
	return detectionPrompt + fmt.Sprintf("\n- Only these characters can appear in the text: %q", string(allowlist))
}

// parseDetectionsJSON parses the JSON array returned by an LLM engine
func parseDetectionsJSON(text string) ([]Detection, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "[")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	endIdx := strings.LastIndex(text, "]")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON array in response")
	}
	text = text[startIdx : endIdx+1]

	var raw []Detection
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	detections := make([]Detection, 0, len(raw))
	for _, d := range raw {
		d.Text = strings.TrimSpace(d.Text)
		if d.Text == "" {
			continue
		}
		d.Confidence = clampConfidence(d.Confidence)
		detections = append(detections, d)
	}
	return detections, nil
}

// filterAllowlist drops characters outside the allowlist; LLMs don't always honour the prompt
func filterAllowlist(detections []Detection, allowlist Allowlist) []Detection {
	if allowlist == AllowAll {
		return detections
	}
	out := detections[:0]
	for _, d := range detections {
		d.Text = strings.TrimSpace(strings.Map(func(r rune) rune {
			if strings.ContainsRune(string(allowlist), r) {
				return r
			}
			return -1
		}, d.Text))
		if d.Text != "" {
			out = append(out, d)
		}
	}
	return out
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
