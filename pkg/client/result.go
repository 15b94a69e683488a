package client

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const resultTimeFormat = "2006-01-02_15-04-05"

// WriteResult records the outcome of a match in a new timestamped file
// under dir and returns its path.
func WriteResult(dir string, result Result, score int, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, now.Format(resultTimeFormat)+".log")
	line := fmt.Sprintf("%s with a score of %d\n", result.Headline(), score)
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}

	return path, nil
}
