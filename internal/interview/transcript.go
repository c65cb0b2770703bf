package interview

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveTranscript writes the session summary as JSON into dir, creating the
// directory when needed. It returns the path of the written file.
func SaveTranscript(dir string, summary Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating transcripts directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding transcript: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("transcript_%s.json", summary.SessionID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}

	return path, nil
}

// SaveReport writes the markdown feedback report into dir next to the
// transcript. It returns the path of the written file.
func SaveReport(dir, sessionID, report string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating transcripts directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%s.md", sessionID))
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}
