package text

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic  = regexp.MustCompile(`\*(.+?)\*`)
	reUnder2  = regexp.MustCompile(`__(.+?)__`)
	reUnder1  = regexp.MustCompile(`_(.+?)_`)
	reStrike  = regexp.MustCompile(`~~(.+?)~~`)
	reCode    = regexp.MustCompile("`{1,3}(.+?)`{1,3}")
	reLink    = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	reBracket = regexp.MustCompile(`\[\w\]|\[!\]`)

	reSpaces     = regexp.MustCompile(`\s+`)
	reSpacePunct = regexp.MustCompile(`\s+([.,!?;:])`)
	allowedPunct = ".,!?;:-'\"/()"
)

// Clean strips emoji and pictographic symbols, markdown emphasis and link
// syntax, collapses whitespace and fixes spacing before punctuation.
// Idempotent: Clean(Clean(s)) == Clean(s).
func Clean(s string) string {
	if s == "" {
		return ""
	}

	// Markdown markers can nest (***x***), so strip until stable.
	for {
		before := s
		s = reBold.ReplaceAllString(s, "$1")
		s = reItalic.ReplaceAllString(s, "$1")
		s = reUnder2.ReplaceAllString(s, "$1")
		s = reUnder1.ReplaceAllString(s, "$1")
		s = reStrike.ReplaceAllString(s, "$1")
		s = reCode.ReplaceAllString(s, "$1")
		s = reLink.ReplaceAllString(s, "$1")
		if s == before {
			break
		}
	}
	s = reBracket.ReplaceAllString(s, "")

	// Allowlist pass: letters, digits, whitespace and plain punctuation.
	// Everything else (emoji, dingbats, stray symbols) goes.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(allowedPunct, r) {
			b.WriteRune(r)
		}
	}
	s = b.String()

	s = reSpaces.ReplaceAllString(s, " ")
	s = reSpacePunct.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
