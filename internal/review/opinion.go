package review

import (
	"regexp"
	"strconv"
	"strings"
)

// OpinionSeparator delimits opinion tokens within an aspect segment.
const OpinionSeparator = " | "

// Sentiment classifies a single opinion token by its trailing tag.
type Sentiment int

// Sentiment classes. Tokens without a recognized trailing tag decode to
// SentimentUnclassified and do not count toward an aspect's opinion total.
const (
	SentimentPositive Sentiment = iota
	SentimentNegative
	SentimentNeutral
	SentimentUnclassified
)

// Trailing sentiment tags on opinion tokens.
const (
	tagPositive = "[P]"
	tagNegative = "[N]"
	tagNeutral  = "[NEU]"
)

// String returns a human-readable name for the sentiment class.
func (s Sentiment) String() string {
	switch s {
	case SentimentPositive:
		return "positive"
	case SentimentNegative:
		return "negative"
	case SentimentNeutral:
		return "neutral"
	default:
		return "unclassified"
	}
}

// ratingPattern matches the first decimal numeral embedded in a rating
// field: one or more digits with an optional fractional part.
var ratingPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// SplitOpinions splits an aspect segment into individual opinion tokens.
// Empty and whitespace-only tokens are discarded; an empty segment yields
// no tokens.
func SplitOpinions(segment string) []string {
	if strings.TrimSpace(segment) == "" {
		return nil
	}

	parts := strings.Split(segment, OpinionSeparator)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// ClassifySentiment decodes the trailing sentiment tag of an opinion token.
// Unrecognized or missing tags yield SentimentUnclassified.
func ClassifySentiment(token string) Sentiment {
	switch {
	case strings.HasSuffix(token, tagNeutral):
		return SentimentNeutral
	case strings.HasSuffix(token, tagPositive):
		return SentimentPositive
	case strings.HasSuffix(token, tagNegative):
		return SentimentNegative
	default:
		return SentimentUnclassified
	}
}

// ExtractRating extracts the first decimal numeral from a raw rating field.
// Returns (0, false) when the field contains no extractable numeral; a
// malformed rating is excluded rather than treated as an error.
func ExtractRating(raw string) (float64, bool) {
	match := ratingPattern.FindString(raw)
	if match == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
