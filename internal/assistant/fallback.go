package assistant

import (
	"regexp"
	"strings"
)

var amountPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Words the model tends to echo that carry no meaning as a description.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "my": true, "of": true,
	"on": true, "for": true, "in": true, "at": true, "to": true, "from": true,
	"is": true, "was": true, "it": true, "this": true, "that": true,
	"spent": true, "paid": true, "got": true, "received": true, "bought": true,
	"expense": true, "income": true, "type": true, "amount": true,
	"description": true, "json": true,
}

// fallbackParse extracts a transaction from prose when the model ignores the
// strict-JSON instruction: the first number is the amount, income wins when
// the text mentions it, and the leftover words become the description.
func fallbackParse(raw string) ParsedTransaction {
	parsed := ParsedTransaction{Type: "expense", Description: "Uncategorized"}

	if m := amountPattern.FindString(raw); m != "" {
		parsed.Amount = m
	}
	if strings.Contains(strings.ToLower(raw), "income") {
		parsed.Type = "income"
	}

	cleaned := amountPattern.ReplaceAllString(raw, " ")
	var words []string
	for _, w := range strings.Fields(cleaned) {
		w = strings.Trim(w, `{}[]"':,.` + "`")
		if w == "" || stopwords[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
	}
	if len(words) > 0 {
		if len(words) > 6 {
			words = words[:6]
		}
		parsed.Description = strings.Join(words, " ")
	}
	return parsed
}
