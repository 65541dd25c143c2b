package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return thinkTags.ReplaceAllString(input, "")
}

// ExtractJSONFromResponse attempts to extract JSON from LLM responses that may
// contain markdown code blocks or other surrounding text.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(RemoveThinkTags(response))

	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json")
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	// Fall back to the outermost object or array boundaries.
	objStart := strings.Index(response, "{")
	objEnd := strings.LastIndex(response, "}")
	arrStart := strings.Index(response, "[")
	arrEnd := strings.LastIndex(response, "]")
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) && arrEnd > arrStart {
		return response[arrStart : arrEnd+1]
	}
	if objStart != -1 && objEnd > objStart {
		return response[objStart : objEnd+1]
	}
	return response
}

// DecodeStructured extracts, repairs and unmarshals an LLM response into out.
// Models frequently emit almost-JSON (trailing commas, unquoted keys); the
// repair pass recovers those before decoding.
func DecodeStructured(response string, out any) error {
	content := ExtractJSONFromResponse(response)
	if repaired, err := jsonrepair.JSONRepair(content); err == nil {
		content = repaired
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("failed to decode structured response: %w", err)
	}
	return nil
}
