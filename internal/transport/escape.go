package transport

import "strings"

// Unescaped text inside a generated script is an injection bug, not a
// cosmetic one. Every strategy must pass user text through the escaper for
// its quoting rules before embedding it.

var appleScriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeAppleScript renders text safe inside a double-quoted AppleScript
// string literal.
func EscapeAppleScript(text string) string {
	return appleScriptEscaper.Replace(text)
}

// EscapeKeystrokes renders text safe for a System Events keystroke command.
// Keystroke input cannot type control characters, so they become spaces.
func EscapeKeystrokes(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, text)
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(cleaned)
}
