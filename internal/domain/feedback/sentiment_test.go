package feedback

import "testing"

func TestAnalyze_EmptyTextIsNeutral(t *testing.T) {
	a := NewLexiconAnalyzer()

	for _, text := range []string{"", "   ", "\t\n"} {
		label, score := a.Analyze(text)
		if label != SentimentNeutral || score != 0 {
			t.Errorf("Analyze(%q) = (%s, %f), expected (Neutral, 0)", text, label, score)
		}
	}
}

func TestAnalyze_Positive(t *testing.T) {
	a := NewLexiconAnalyzer()

	label, score := a.Analyze("Excellent, highly recommend")
	if label != SentimentPositive {
		t.Errorf("expected Positive, got %s", label)
	}
	if score <= 0 || score > 1 {
		t.Errorf("expected score in (0,1], got %f", score)
	}
}

func TestAnalyze_Negative(t *testing.T) {
	a := NewLexiconAnalyzer()

	label, _ := a.Analyze("terrible experience, rude staff and a dirty ward")
	if label != SentimentNegative {
		t.Errorf("expected Negative, got %s", label)
	}
}

func TestAnalyze_NegationFlipsPolarity(t *testing.T) {
	a := NewLexiconAnalyzer()

	label, _ := a.Analyze("not good")
	if label != SentimentNegative {
		t.Errorf("expected negated positive to read Negative, got %s", label)
	}

	label, _ = a.Analyze("the treatment wasn't painful")
	if label != SentimentPositive {
		t.Errorf("expected negated negative to read Positive, got %s", label)
	}
}

func TestAnalyze_NoSentimentWordsIsNeutral(t *testing.T) {
	a := NewLexiconAnalyzer()

	label, score := a.Analyze("I visited the clinic on Tuesday at nine")
	if label != SentimentNeutral || score != 0 {
		t.Errorf("expected (Neutral, 0), got (%s, %f)", label, score)
	}
}

func TestAnalyze_MixedLeansTowardMajority(t *testing.T) {
	a := NewLexiconAnalyzer()

	label, score := a.Analyze("good doctor, great nurses, slightly slow reception")
	if label != SentimentPositive {
		t.Errorf("expected Positive for majority-positive text, got %s", label)
	}
	if score >= 1 {
		t.Errorf("expected mixed text to score below 1, got %f", score)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := NewLexiconAnalyzer()

	l1, s1 := a.Analyze("excellent care")
	for i := 0; i < 50; i++ {
		l2, s2 := a.Analyze("excellent care")
		if l1 != l2 || s1 != s2 {
			t.Fatal("expected identical results on repeated analysis")
		}
	}
}
