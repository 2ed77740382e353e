package feedback

// TES weights for the pre-treatment, post-treatment and satisfaction ratings.
const (
	weightPre          = 0.30
	weightPost         = 0.40
	weightSatisfaction = 0.30
)

// Score computes the Treatment Evaluation Score from three 1-5 ratings.
// Each rating is normalized to 0-100 and combined by weighted mean, so the
// result is bounded to [0,100] and monotonically increasing in every input.
func Score(pre, post, satisfaction int) float64 {
	return weightPre*normalize(pre) +
		weightPost*normalize(post) +
		weightSatisfaction*normalize(satisfaction)
}

func normalize(rating int) float64 {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	return float64(rating-1) / 4 * 100
}
