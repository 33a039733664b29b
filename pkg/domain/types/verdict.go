package types

// Verdict represents the outcome of a review action
type Verdict string

const (
	VerdictCorrect          Verdict = "correct"
	VerdictIncorrect        Verdict = "incorrect"
	VerdictNeedsImprovement Verdict = "needs-improvement"
)

// IsValid checks if the verdict is valid
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictCorrect, VerdictIncorrect, VerdictNeedsImprovement:
		return true
	default:
		return false
	}
}

// String returns the string representation of the verdict
func (v Verdict) String() string {
	return string(v)
}
