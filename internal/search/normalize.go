package search

import "strings"

// Normalize canonicalizes free text to a comparable form: lowercase, "&"
// folded to "and", every run of non-alphanumeric characters collapsed to a
// single space, leading/trailing space trimmed. Idempotent.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "&", " and ")

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeFuzzy is Normalize plus naive per-token suffix stemming, used for
// edit-distance comparison so that trivial plural/singular differences do not
// count against a candidate.
func NormalizeFuzzy(text string) string {
	tokens := strings.Fields(Normalize(text))
	for i, tok := range tokens {
		tokens[i] = stem(tok)
	}
	return strings.Join(tokens, " ")
}

// stem applies crude suffix rules; tokens of length <= 3 pass through.
func stem(tok string) string {
	n := len(tok)
	switch {
	case n <= 3:
		return tok
	case n > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:n-3] + "y"
	case strings.HasSuffix(tok, "es"):
		return tok[:n-2]
	case strings.HasSuffix(tok, "s"):
		return tok[:n-1]
	}
	return tok
}

// slugTokens splits raw text into alphanumeric tokens of at least minLen
// characters, keeping at most max of them.
func slugTokens(text string, minLen, max int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	var tokens []string
	for _, f := range fields {
		if len(f) < minLen {
			continue
		}
		tokens = append(tokens, f)
		if len(tokens) == max {
			break
		}
	}
	return tokens
}
