/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package fountain

import (
	"strings"
	"unicode"
)

// sceneHeaderPrefixes are matched case-sensitively against the trimmed line.
var sceneHeaderPrefixes = []string{"INT.", "EXT.", "INT ", "EXT ", "EST.", ". ", "I/E"}

// IsSceneHeader reports whether s starts a new scene.
func IsSceneHeader(s string) bool {
	s = strings.TrimSpace(s)
	for _, p := range sceneHeaderPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsCharacter reports whether s looks like a character cue: upper-case and not a scene header.
// It does not check the blank line that must precede a cue; the classifier does that.
func IsCharacter(s string) bool {
	s = strings.TrimSpace(s)
	return isUpper(s) && !IsSceneHeader(s)
}

// IsParenthetical reports whether s is wrapped in parentheses.
func IsParenthetical(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
}

// IsTransition reports whether s is a forced transition (leading ">") or an upper-case line
// ending in "TO:".
func IsTransition(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, ">") {
		return true
	}
	return isUpper(s) && strings.HasSuffix(s, "TO:")
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool { return strings.TrimSpace(s) == "" }

// isUpper is true when s has no lower-case letter. Strings without letters qualify.
func isUpper(s string) bool { return strings.IndexFunc(s, unicode.IsLower) < 0 }
