package coach

import "fmt"

// extractJSONObject returns the first balanced {...} span in s, tolerating
// prose before and after it. Braces inside JSON strings are ignored, as are
// escaped quotes. Models routinely wrap their JSON in explanations or
// markdown fences, so the whole body can never be assumed clean.
func extractJSONObject(s string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	if start < 0 {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}
