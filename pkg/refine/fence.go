package refine

import "regexp"

var fenceRE = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\n(.*?)\n```")

// CodeFence extracts the body of the first fenced code block in text.
// It returns "" and false when no fence is present; callers fall back to
// the full response.
func CodeFence(text string) (string, bool) {
	m := fenceRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
