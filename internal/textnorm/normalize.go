// Package textnorm turns raw OCR output into canonical classified tokens.
// Normalization is deterministic and side-effect free: identical raw text
// always yields the identical token sequence, and normalizing already
// canonical text is a no-op.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

// Class is the coarse token classification used by the field extractor.
type Class int

// Token classes
const (
	ClassOther Class = iota
	ClassSymbolCandidate
	ClassNumber
	ClassPercent
	ClassDateFragment
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassSymbolCandidate:
		return "SYMBOL_CANDIDATE"
	case ClassNumber:
		return "NUMBER"
	case ClassPercent:
		return "PERCENT"
	case ClassDateFragment:
		return "DATE_FRAGMENT"
	default:
		return "OTHER"
	}
}

// Token is one canonical token with its classification.
type Token struct {
	Text  string
	Class Class
}

var (
	// reNoise removes everything outside the OCR character whitelist plus
	// the separators date/time fragments need.
	reNoise = regexp.MustCompile(`[^A-Z0-9.%+\-$/:, ]+`)

	reMultiSpace = regexp.MustCompile(` {2,}`)

	rePercent = regexp.MustCompile(`^[+-]?\$?\d+(,\d{3})*([.,]\d+)?%$`)
	reNumber  = regexp.MustCompile(`^[+-]?\$?\d+(,\d{3})*([.,]\d+)?$`)

	reDateISO      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateDotted   = regexp.MustCompile(`^\d{1,2}[./]\d{1,2}[./]\d{2,4}$`)
	reTimeOfDay    = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
	reDateTimeGlue = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{1,2}:\d{2}(:\d{2})?$`)

	reSymbolShape = regexp.MustCompile(`^[A-Z]{2,10}(/[A-Z]{2,6})?$`)
)

// Normalize cleans raw OCR text and splits it into classified canonical
// tokens. Case is folded to upper, noise characters are dropped, whitespace
// is collapsed. Number and percent tokens get a canonical rendering: no
// currency prefix, comma decimal separators replaced by a dot.
func Normalize(raw string) []Token {
	if raw == "" {
		return nil
	}

	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = reNoise.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")

	var tokens []Token
	for _, field := range strings.Fields(s) {
		tok := classify(strings.Trim(field, ","))
		if tok.Text == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Render joins canonical token texts back into a single normalized string.
// Normalize(Render(Normalize(s))) equals Normalize(s) for any input.
func Render(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// classify assigns a class and canonicalizes the token text.
func classify(text string) Token {
	if text == "" {
		return Token{}
	}

	switch {
	case rePercent.MatchString(text):
		return Token{Text: canonicalNumber(strings.TrimSuffix(text, "%")) + "%", Class: ClassPercent}

	case reNumber.MatchString(text):
		return Token{Text: canonicalNumber(text), Class: ClassNumber}

	case reDateISO.MatchString(text),
		reDateDotted.MatchString(text),
		reTimeOfDay.MatchString(text),
		reDateTimeGlue.MatchString(text):
		return Token{Text: text, Class: ClassDateFragment}

	case reSymbolShape.MatchString(text):
		return Token{Text: text, Class: ClassSymbolCandidate}

	default:
		return Token{Text: text, Class: ClassOther}
	}
}

// canonicalNumber strips the currency prefix and repairs a comma decimal
// separator, a common OCR confusion. An explicit sign is preserved: the
// extractor's fallback heuristic reads signed numbers as ROI.
func canonicalNumber(text string) string {
	sign := ""
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		sign = text[:1]
		text = text[1:]
	}
	text = strings.TrimPrefix(text, "$")

	// A lone comma with no dot is a misread decimal separator.
	if strings.Count(text, ",") == 1 && !strings.Contains(text, ".") {
		text = strings.Replace(text, ",", ".", 1)
	}
	text = strings.ReplaceAll(text, ",", "")

	return sign + text
}

// ParseNumber parses a NUMBER or PERCENT token into a float64.
// Returns false for other classes or unparsable text.
func ParseNumber(tok Token) (float64, bool) {
	if tok.Class != ClassNumber && tok.Class != ClassPercent {
		return 0, false
	}
	text := strings.TrimSuffix(tok.Text, "%")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Signed reports whether the token text carries an explicit sign. Used by
// the extractor's positional fallback: a signed number reads as ROI, not
// as a price.
func Signed(tok Token) bool {
	return strings.HasPrefix(tok.Text, "-") || strings.HasPrefix(tok.Text, "+")
}
