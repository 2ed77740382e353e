package feedback

import "strings"

// SentimentAnalyzer classifies free-text comments. Implementations are
// initialized once at process start; Analyze must be safe for concurrent use.
type SentimentAnalyzer interface {
	Analyze(text string) (label string, score float64)
}

// LexiconAnalyzer is a wordlist-based analyzer with simple negation handling.
type LexiconAnalyzer struct {
	positive map[string]bool
	negative map[string]bool
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true,
	"isnt": true, "wasnt": true, "didnt": true, "dont": true, "cant": true,
	"couldnt": true, "wouldnt": true, "hardly": true,
}

// NewLexiconAnalyzer builds the analyzer with its wordlists. Build it once
// and share it; it holds no per-call state.
func NewLexiconAnalyzer() *LexiconAnalyzer {
	positive := []string{
		"excellent", "great", "good", "wonderful", "amazing", "outstanding",
		"helpful", "caring", "professional", "friendly", "clean", "fast",
		"recommend", "thorough", "attentive", "kind", "satisfied", "happy",
		"improved", "better", "best", "painless", "comfortable", "reassuring",
	}
	negative := []string{
		"bad", "terrible", "awful", "horrible", "poor", "rude", "slow",
		"dirty", "painful", "worse", "worst", "unhelpful", "dismissive",
		"careless", "disappointed", "unprofessional", "confusing", "late",
		"unsatisfied", "unhappy", "neglected", "cold", "crowded",
	}
	a := &LexiconAnalyzer{
		positive: make(map[string]bool, len(positive)),
		negative: make(map[string]bool, len(negative)),
	}
	for _, w := range positive {
		a.positive[w] = true
	}
	for _, w := range negative {
		a.negative[w] = true
	}
	return a
}

// Analyze classifies text into Positive, Neutral or Negative with a
// confidence in [0,1]. Empty text is Neutral with score 0. A negation word
// directly before a sentiment word flips its polarity.
func (a *LexiconAnalyzer) Analyze(text string) (string, float64) {
	words := tokenize(text)
	if len(words) == 0 {
		return SentimentNeutral, 0
	}

	var pos, neg int
	negated := false
	for _, w := range words {
		switch {
		case negations[w]:
			negated = true
			continue
		case a.positive[w]:
			if negated {
				neg++
			} else {
				pos++
			}
		case a.negative[w]:
			if negated {
				pos++
			} else {
				neg++
			}
		}
		negated = false
	}

	total := pos + neg
	if total == 0 {
		return SentimentNeutral, 0
	}

	score := float64(abs(pos-neg)) / float64(total)
	switch {
	case pos > neg:
		return SentimentPositive, score
	case neg > pos:
		return SentimentNegative, score
	default:
		return SentimentNeutral, 0
	}
}

func tokenize(text string) []string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '\'':
			// drop apostrophes so "don't" matches "dont"
			return -1
		default:
			return ' '
		}
	}, text)
	return strings.Fields(clean)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
