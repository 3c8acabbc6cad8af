// Package prompt builds generation prompts for the external model,
// including the corrective addendum derived from validation feedback.
package prompt

import (
	"fmt"
	"strings"

	"github.com/zen-systems/pulseforge/pkg/mode"
)

// ForMode constructs the full prompt for a synthesized keyword set.
// The addendum, when non-empty, carries the corrective instruction built
// from the most recent unstable validation.
func ForMode(m mode.Mode, keywords []string, addendum string) string {
	var sb strings.Builder

	switch m {
	case mode.Content:
		sb.WriteString("You are an expert SEO content creator. Generate a concise, well-structured, and engaging piece of SEO-optimized content ")
		sb.WriteString("based on the following keywords/phrases. Focus on natural language and incorporate keywords effectively. ")
		sb.WriteString("Do not include any code blocks or special formatting outside of standard paragraphs. ")
		sb.WriteString("Return only the content.\n\n")
		sb.WriteString(fmt.Sprintf("Keywords/Phrases: %s.\n\n", strings.Join(keywords, ", ")))
		sb.WriteString("Example: If keywords are 'best coffee shop, downtown, reviews', generate a paragraph reviewing a coffee shop.")
	default:
		// Script mode doubles as the fallback for unrecognized tags.
		sb.WriteString("You are an expert Python programmer. Generate a complete, concise, and functional Python script based on the following keywords/requirements. ")
		sb.WriteString("The script should be self-contained and ready to run. Include necessary imports. ")
		sb.WriteString("Wrap the entire script in a single markdown code block with '```python' at the beginning and '```' at the end.\n\n")
		sb.WriteString(fmt.Sprintf("Keywords/Requirements: %s.\n\n", strings.Join(keywords, ", ")))
		sb.WriteString("Example: If keywords are 'file io, read, write', generate a script that reads from one file and writes to another.")
	}

	if addendum != "" {
		sb.WriteString(addendum)
	}
	return sb.String()
}

// CorrectiveAddendum names the previous failure so the next generation
// attempt can avoid it.
func CorrectiveAddendum(errorDetail string) string {
	return fmt.Sprintf(" The previous attempt failed with error: '%s'. Please try to correct this and generate a working version.", errorDetail)
}
