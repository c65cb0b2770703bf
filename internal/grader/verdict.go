package grader

import "strings"

// Correctness is the oracle's classification of a candidate answer. Only the
// three literal values of the grading contract plus the internal Error state
// exist; anything else the oracle produces is coerced to Incorrect.
type Correctness string

const (
	Correct          Correctness = "Correct"
	PartiallyCorrect Correctness = "Partially Correct"
	Incorrect        Correctness = "Incorrect"
	// CorrectnessError marks evaluations that failed before a judgment could
	// be made (unreachable oracle, unparsable response).
	CorrectnessError Correctness = "Error"
)

// ParseCorrectness maps a raw correctness literal onto the accepted set. The
// returned bool reports whether the literal was accepted as-is; when false the
// result is always Incorrect.
func ParseCorrectness(raw string) (Correctness, bool) {
	switch strings.TrimSpace(raw) {
	case string(Correct):
		return Correct, true
	case string(PartiallyCorrect):
		return PartiallyCorrect, true
	case string(Incorrect):
		return Incorrect, true
	default:
		return Incorrect, false
	}
}

// Score returns the fixed numeric value of the correctness classification.
func (c Correctness) Score() float64 {
	switch c {
	case Correct:
		return 1.0
	case PartiallyCorrect:
		return 0.5
	default:
		return 0.0
	}
}

// Verdict is the immutable outcome of grading one answer. It has no score
// field on purpose: the score derives from the correctness classification and
// nothing else.
type Verdict struct {
	QuestionID    string
	Answer        string
	Correctness   Correctness
	Justification string
	Tips          string
}

// Score returns the numeric score of the verdict.
func (v *Verdict) Score() float64 {
	return v.Correctness.Score()
}
