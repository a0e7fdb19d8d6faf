package text

import (
	"strings"
	"unicode"
)

const vietnameseDiacritics = "àáảãạăằắẳẵặâầấẩẫậèéẻẽẹêềếểễệìíỉĩịòóỏõọôồốổỗộơờớởỡợùúủũụưừứửữựỳýỷỹỵđ" +
	"ÀÁẢÃẠĂẰẮẲẴẶÂẦẤẨẪẬÈÉẺẼẸÊỀẾỂỄỆÌÍỈĨỊÒÓỎÕỌÔỒỐỔỖỘƠỜỚỞỠỢÙÚỦŨỤƯỪỨỬỮỰỲÝỶỸỴĐ"

// DetectLanguage guesses "vi" or "en". Any Vietnamese diacritic wins;
// otherwise a high ASCII-letter ratio picks English. This is a heuristic,
// not a guarantee — unaccented Vietnamese reads as English here.
func DetectLanguage(s string) string {
	if strings.ContainsAny(s, vietnameseDiacritics) {
		return "vi"
	}

	var ascii, total int
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsDigit(r) || (!unicode.IsLetter(r)) {
			continue
		}
		total++
		if r < 128 {
			ascii++
		}
	}
	if total > 0 && float64(ascii)/float64(total) > 0.7 {
		return "en"
	}
	return "vi"
}
