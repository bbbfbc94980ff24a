package domain

import "strings"

const ellipsis = "..."

// ShapeReply trims generated text to the reply budget: at most maxLen runes,
// and when the model produced more than three lines, two lines split near the middle.
func ShapeReply(raw string, maxLen int) string {
	reply := strings.TrimSpace(raw)
	if runeLen(reply) > maxLen {
		reply = strings.TrimRightFunc(headRunes(reply, maxLen-3), isSpace) + ellipsis
	}

	lines := nonEmptyLines(reply)
	if len(lines) <= 3 {
		return reply
	}

	flat := truncate(strings.Join(lines, " "), maxLen)
	out := splitInTwo(flat)
	if runeLen(out) > maxLen {
		// The midpoint fallback inserts a newline, make room for it
		out = splitInTwo(truncate(flat, maxLen-1))
	}
	return out
}

// ApplySafeMode prefixes the deflection phrase to the first line of a shaped reply
// and shapes the result again
func ApplySafeMode(shaped string, p Persona, maxLen int) string {
	first := shaped
	if i := strings.IndexByte(shaped, '\n'); i >= 0 {
		first = shaped[:i]
	}
	return ShapeReply(p.DeflectionPhrase+" "+first, maxLen)
}

// WordCount counts whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// nonEmptyLines splits on every line boundary, not only '\n'
func nonEmptyLines(s string) []string {
	var lines []string
	for _, ln := range strings.FieldsFunc(s, isLineBreak) {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

func truncate(s string, maxLen int) string {
	if runeLen(s) <= maxLen {
		return s
	}
	return headRunes(s, maxLen-3) + ellipsis
}

// splitInTwo splits at the last space before the midpoint, or at the midpoint itself
func splitInTwo(s string) string {
	r := []rune(s)
	mid := len(r) / 2
	at := -1
	for i := mid - 1; i >= 0; i-- {
		if r[i] == ' ' {
			at = i
			break
		}
	}
	if at == -1 {
		at = mid
	}
	return strings.TrimSpace(string(r[:at])) + "\n" + strings.TrimSpace(string(r[at:]))
}

func headRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if n >= len(r) {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int {
	return len([]rune(s))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
