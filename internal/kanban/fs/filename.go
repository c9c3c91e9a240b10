package fs

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var multiUnderscore = regexp.MustCompile(`_+`)

// ToSnakeCase converts a title to lowercase snake_case
// "My Card Title!" -> "my_card_title"
func ToSnakeCase(title string) string {
	s := strings.ToLower(title)

	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")

	// Remove non-alphanumeric chars (except underscore)
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		}
	}
	s = result.String()

	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if s == "" {
		s = "task"
	}

	return s
}

// UniqueFilename returns base.md, or base_2.md, base_3.md, ... if taken,
// and marks the result as taken
func UniqueFilename(base string, taken map[string]bool) string {
	candidate := base + ".md"
	for i := 2; taken[candidate]; i++ {
		candidate = base + "_" + strconv.Itoa(i) + ".md"
	}
	taken[candidate] = true
	return candidate
}
