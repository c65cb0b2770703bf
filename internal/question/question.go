package question

// Question is a single entry of the interview question bank. The ideal answer
// is never shown to the candidate; it seeds the knowledge base used to ground
// the grading prompt.
type Question struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Difficulty  string `json:"difficulty"`
	Topic       string `json:"topic"`
	IdealAnswer string `json:"ideal_answer"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	defaultTopic = "General"
)

// difficultyRank orders questions from easy to hard. Unknown difficulties are
// treated as medium.
func difficultyRank(difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}
