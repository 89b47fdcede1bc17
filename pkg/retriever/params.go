package retriever

import "fmt"

// Params controls one search.
type Params struct {
	// TopK is the number of results returned.
	TopK int `json:"top_k"`

	// KEach is the number of candidates recalled from each channel.
	KEach int `json:"k_each"`

	// Alpha weighs the text score against the image score.
	Alpha float64 `json:"alpha"`

	// BetaTitle and BetaSur weigh the title and surrounding-text scores
	// inside the text score. They are renormalized to sum to one.
	BetaTitle float64 `json:"beta_title"`
	BetaSur   float64 `json:"beta_sur"`
}

// DefaultParams returns the standard search parameters.
func DefaultParams() Params {
	return Params{
		TopK:      10,
		KEach:     50,
		Alpha:     0.6,
		BetaTitle: 0.7,
		BetaSur:   0.3,
	}
}

// Validate checks p and returns it with the betas renormalized to sum to one.
func (p Params) Validate() (Params, error) {
	if !(p.Alpha >= 0 && p.Alpha <= 1) {
		return p, fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalidWeights, p.Alpha)
	}
	if !(p.BetaTitle >= 0) || !(p.BetaSur >= 0) {
		return p, fmt.Errorf("%w: negative beta (title %v, surrounding %v)", ErrInvalidWeights, p.BetaTitle, p.BetaSur)
	}
	sum := p.BetaTitle + p.BetaSur
	if !(sum > 0) {
		return p, fmt.Errorf("%w: beta_title + beta_sur must be positive", ErrInvalidWeights)
	}
	if p.TopK < 0 || p.KEach < 0 {
		return p, fmt.Errorf("%w: top_k %d and k_each %d must not be negative", ErrInvalidParams, p.TopK, p.KEach)
	}

	p.BetaTitle /= sum
	p.BetaSur /= sum
	return p, nil
}
