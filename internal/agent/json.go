package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CleanJSONResponse removes markdown code fences and any prose around the
// first JSON object in an AI response.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") && strings.HasSuffix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	if json.Valid([]byte(response)) {
		return response
	}
	return extractObject(response)
}

// extractObject returns the first balanced {...} span, or s unchanged.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return s
	}

	depth, inString, escaped := 0, false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s
}

func decodeJSON(response string, v any) error {
	if err := json.Unmarshal([]byte(CleanJSONResponse(response)), v); err != nil {
		return fmt.Errorf("parsing AI response: %w", err)
	}
	return nil
}
