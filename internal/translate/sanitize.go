package translate

import (
	"regexp"
	"strings"
)

// Translation models like to append "this is a machine translation"
// disclaimers in various shapes. None of them belong on the page.
var (
	parenNoteRe   = regexp.MustCompile(`(?is)\(\s*not[eă]\s*:[^)]*\)`)
	bracketNoteRe = regexp.MustCompile(`(?is)\[\s*not[eă]\s*:[^\]]*\]`)
	lineNoteRe    = regexp.MustCompile(`(?i)^\s*not[eă]\s*:`)
)

// SanitizeAIText strips translator disclaimers from model output:
// full "Note:" lines, inline parenthesized notes and bracketed notes.
func SanitizeAIText(s string) string {
	if s == "" {
		return ""
	}

	s = parenNoteRe.ReplaceAllString(s, " ")
	s = bracketNoteRe.ReplaceAllString(s, " ")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if lineNoteRe.MatchString(line) {
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
