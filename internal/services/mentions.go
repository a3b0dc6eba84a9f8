package services

import (
	"regexp"
	"strings"
)

// mentionPattern matches "@handle" where a handle is 2-32 word
// characters with dots, hyphens and underscores allowed after the
// first character.
var mentionPattern = regexp.MustCompile(`@(\w[\w.-]{1,31})`)

// ExtractMentions scans free text for @handle mentions and returns the
// distinct handles, lower-cased, in order of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handle := strings.ToLower(m[1])
		if !seen[handle] {
			seen[handle] = true
			handles = append(handles, handle)
		}
	}
	return handles
}
