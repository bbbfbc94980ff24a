package domain

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPersona() Persona {
	return Persona{
		Name:              "Maverick",
		ProtectedKeywords: []string{"christian", "muslim", "gay"},
		Greetings:         []string{"yo", "hey", "hi", "hello"},
		DeflectionPhrase:  "(not touching that).",
	}
}

func TestShapeReply_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "sure.", ShapeReply("   sure.  \n", 300))
}

func TestShapeReply_TruncatesLongText(t *testing.T) {
	raw := strings.Repeat("a", 500)

	out := ShapeReply(raw, 300)

	assert.LessOrEqual(t, len([]rune(out)), 300)
	assert.True(t, strings.HasSuffix(out, "..."), "expected ellipsis, got %q", out)
	assert.Equal(t, strings.Repeat("a", 297)+"...", out)
}

func TestShapeReply_TruncationDropsTrailingSpace(t *testing.T) {
	raw := strings.Repeat("a", 8) + "  " + strings.Repeat("b", 20)

	out := ShapeReply(raw, 13)

	assert.Equal(t, "aaaaaaaa...", out)
}

func TestShapeReply_KeepsUpToThreeLines(t *testing.T) {
	raw := "one\n\n  two  \nthree"

	out := ShapeReply(raw, 300)

	// Three non-empty lines pass through without flattening
	assert.Equal(t, "one\n\n  two  \nthree", out)
}

func TestShapeReply_FlattensMoreThanThreeLines(t *testing.T) {
	raw := "alpha beta\ngamma\ndelta epsilon\nzeta eta\ntheta"

	out := ShapeReply(raw, 300)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "alpha beta gamma", lines[0])
	assert.Equal(t, "delta epsilon zeta eta theta", lines[1])
}

func TestShapeReply_FlattensOtherLineBreaks(t *testing.T) {
	raw := "alpha beta\rgamma\u2028delta epsilon\r\nzeta eta\ftheta"

	out := ShapeReply(raw, 300)

	assert.Equal(t, "alpha beta gamma\ndelta epsilon zeta eta theta", out)
}

func TestShapeReply_SplitsAtMidpointWithoutSpace(t *testing.T) {
	raw := strings.Repeat("x", 40) + "\na\nb\nc"

	out := ShapeReply(raw, 300)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Repeat("x", 23), lines[0])
	assert.Equal(t, strings.Repeat("x", 17)+" a b c", lines[1])
}

func TestShapeReply_MidpointSplitStaysWithinBudget(t *testing.T) {
	raw := strings.Repeat("x", 40) + "\na\nb\nc"
	maxLen := len([]rune(strings.Repeat("x", 40) + " a b c"))

	out := ShapeReply(raw, maxLen)

	assert.LessOrEqual(t, len([]rune(out)), maxLen)
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestShapeReply_CountsRunes(t *testing.T) {
	raw := strings.Repeat("ж", 50)

	out := ShapeReply(raw, 20)

	assert.Equal(t, strings.Repeat("ж", 17)+"...", out)
}

func TestShapeReply_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	alphabet := []rune("abc de\n\n  fgh\tij!?ж")

	for i := 0; i < 2000; i++ {
		n := r.Intn(700)
		buf := make([]rune, n)
		for j := range buf {
			buf[j] = alphabet[r.Intn(len(alphabet))]
		}
		raw := string(buf)
		maxLen := 20 + r.Intn(400)

		out := ShapeReply(raw, maxLen)

		require.LessOrEqual(t, len([]rune(out)), maxLen, "raw=%q max=%d", raw, maxLen)

		// Lines are counted after the first length cut, which may drop some
		pre := strings.TrimSpace(raw)
		if len([]rune(pre)) > maxLen {
			pre = strings.TrimRightFunc(headRunes(pre, maxLen-3), isSpace) + "..."
		}
		if len(nonEmptyLines(pre)) > 3 {
			require.Len(t, strings.Split(out, "\n"), 2, "raw=%q", raw)
		}
	}
}

func TestApplySafeMode(t *testing.T) {
	p := testPersona()

	out := ApplySafeMode("first line\nsecond line", p, 300)

	assert.Equal(t, "(not touching that). first line", out)
}

func TestApplySafeMode_RespectsBudget(t *testing.T) {
	p := testPersona()
	shaped := ShapeReply(strings.Repeat("word ", 100), 60)

	out := ApplySafeMode(shaped, p, 60)

	assert.True(t, strings.HasPrefix(out, "(not touching that)."))
	assert.LessOrEqual(t, len([]rune(out)), 60)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" a  b\nc "))
}
