package store

import "strings"

// NormalizeTitle lowercases and collapses whitespace in a title so that
// "The Sorcerer's Stone" and "the sorcerer's   stone" compare equal for
// duplicate-source detection (spec.md §4.8 step 3).
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
