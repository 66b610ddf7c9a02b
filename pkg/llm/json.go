package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonFencePattern matches a ```json fenced code block.
var jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// bareFencePattern matches a plain ``` fenced code block.
var bareFencePattern = regexp.MustCompile("(?s)```\\s*(.*?)```")

// ExtractJSON extracts a JSON object from a model response. It prefers
// a ```json fenced block, then any fenced block, then the first
// balanced brace span in the raw text.
func ExtractJSON(response string) (string, error) {
	if m := jsonFencePattern.FindStringSubmatch(response); len(m) >= 2 {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if m := bareFencePattern.FindStringSubmatch(response); len(m) >= 2 {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	if candidate, ok := extractBalancedJSON(response, '{', '}'); ok {
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// extractBalancedJSON finds the first balanced JSON structure starting
// with openChar. It handles nested structures by counting bracket depth.
func extractBalancedJSON(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into the target.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}

	return result, nil
}
