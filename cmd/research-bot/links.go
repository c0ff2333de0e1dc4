// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import "regexp"

// linkPattern matches markdown links [text](url).
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)

// makeLinksClickable converts markdown links to OSC 8 terminal hyperlinks
// so they are clickable in supporting terminals (iTerm2, kitty, etc.).
func makeLinksClickable(text string) string {
	return linkPattern.ReplaceAllStringFunc(text, func(m string) string {
		parts := linkPattern.FindStringSubmatch(m)
		label, url := parts[1], parts[2]
		return "\033]8;;" + url + "\033\\[" + label + "]\033]8;;\033\\"
	})
}
