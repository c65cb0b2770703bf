package question

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var bankSchema string

// LoadBank reads the question bank from a JSON file, validates it against the
// bank schema, applies defaults and returns the questions ordered from easy to
// hard. The relative order of questions with equal difficulty is preserved.
func LoadBank(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question bank: %w", err)
	}

	if err := validateBank(data); err != nil {
		return nil, err
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decoding question bank: %w", err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("question bank %q contains no questions", path)
	}

	for i := range questions {
		if strings.TrimSpace(questions[i].Difficulty) == "" {
			questions[i].Difficulty = DifficultyMedium
		}
		if strings.TrimSpace(questions[i].Topic) == "" {
			questions[i].Topic = defaultTopic
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return difficultyRank(questions[i].Difficulty) < difficultyRank(questions[j].Difficulty)
	})

	return questions, nil
}

func validateBank(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(bankSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validating question bank: %w", err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("question bank is not valid: %s", strings.Join(issues, "; "))
	}

	return nil
}
