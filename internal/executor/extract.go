package executor

import "regexp"

// fencePattern matches a triple-backtick block with an optional language tag.
// Non-greedy, so the first block wins.
var fencePattern = regexp.MustCompile("```(\\s*(go|golang|py|python)\\s*\\n)?([\\s\\S]*?)```")

// ExtractCode returns the interior of the first fenced code block in text, or
// text unchanged when there is none.
func ExtractCode(text string) string {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[3]
}
