package domain

import "strings"

// Persona holds the fixed personality injected into every prompt.
// It is loaded once at startup and never mutated.
type Persona struct {
	Name              string
	Instructions      string
	ProtectedKeywords []string
	Greetings         []string
	DeflectionPhrase  string
	SafeModeNote      string
	FallbackReply     string
}

// IsProtected reports whether text mentions any protected-category keyword
// (case-insensitive substring match)
func (p *Persona) IsProtected(text string) bool {
	t := strings.ToLower(text)
	for _, k := range p.ProtectedKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// StartsWithGreeting reports whether text opens with one of the persona's greetings
func (p *Persona) StartsWithGreeting(text string) bool {
	t := strings.ToLower(text)
	for _, g := range p.Greetings {
		g = strings.ToLower(g)
		if g != "" && strings.HasPrefix(t, g) {
			return true
		}
	}
	return false
}
