package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHSpace     = regexp.MustCompile(`[ \t\f\v]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=]{3,}[ \t]*$`)
)

// OCR confusion repairs, applied in order on lowercased text.
var (
	// "1og" -> "10g"
	reDigitOG = regexp.MustCompile(`(\d)o(g\b)`)
	// "fat og" -> "fat 0g"
	reLoneOG = regexp.MustCompile(`(?m)(^|\s)og\b`)
	// "45g9" / "45g0" -> "45g"
	reTrailingG9 = regexp.MustCompile(`(?m)(\d)( ?)g[90]([ \t]|$)`)
	// "459" / "45 9" -> "45g", only on gram nutrient rows
	reNineAsG = regexp.MustCompile(`(?m)(\d)( ?)9([ \t]|$)`)
)

var gramKeywords = []string{
	"carbohydrate", "carbs", "sugar", "fibre", "fiber", "protein", "fat", "salt", "saturates",
}

// Normalize lowercases OCR text, collapses horizontal whitespace while keeping
// line breaks, and repairs the character confusions tesseract commonly makes on
// nutrition labels. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = foldCase(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reHSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	s = normalizeDecimalSeparators(s)
	s = reDigitOG.ReplaceAllString(s, "${1}0${2}")
	s = reLoneOG.ReplaceAllString(s, "${1}0g")
	s = reTrailingG9.ReplaceAllString(s, "${1}${2}g${3}")
	return repairNineAsG(s)
}

// foldCase applies NFKC and lowercasing until stable; NFKC can expand
// symbols such as "㎎" into letters that still need lowering.
func foldCase(s string) string {
	for i := 0; i < 4; i++ {
		next := strings.ToLower(norm.NFKC.String(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// normalizeDecimalSeparators rewrites "4,5" to "4.5" and drops thousands
// separators ("1,250" -> "1250"). A comma is a thousands separator when it is
// followed by exactly three digits.
func normalizeDecimalSeparators(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != ',' || i == 0 || i+1 >= len(s) || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			b.WriteByte(c)
			continue
		}
		n := 0
		for j := i + 1; j < len(s) && isDigit(s[j]); j++ {
			n++
		}
		if n == 3 {
			continue
		}
		b.WriteByte('.')
	}
	return b.String()
}

func repairNineAsG(s string) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if hasGramKeyword(ln) {
			lines[i] = reNineAsG.ReplaceAllString(ln, "${1}g${3}")
		}
	}
	return strings.Join(lines, "\n")
}

func hasGramKeyword(line string) bool {
	for _, kw := range gramKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
