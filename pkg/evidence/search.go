// Package evidence scans recorded query logs for forensic traces of
// column usage.
package evidence

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// maxEvidenceLines caps how many matching lines a search returns.
const maxEvidenceLines = 10

// Searcher scans a line-oriented log file for whole-word column
// references.
type Searcher struct {
	logPath string
	logger  *zap.Logger
}

// NewSearcher creates a searcher over the log file at logPath.
// If logger is nil, a no-op logger is used.
func NewSearcher(logPath string, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		logPath: logPath,
		logger:  logger.Named("evidence"),
	}
}

// SearchColumnUsage scans the log file for lines that reference the
// column name as a whole word, case-insensitively. Substring hits do
// not count, so searching "id" never matches "user_id". A missing log
// file is a handled state and returns an explanatory note.
func (s *Searcher) SearchColumnUsage(columnName string) string {
	if _, err := os.Stat(s.logPath); err != nil {
		s.logger.Warn("log file not found", zap.String("path", s.logPath))
		return fmt.Sprintf("System Note: Log file '%s' not found. No usage data available.", filepath.Base(s.logPath))
	}

	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(columnName) + `\b`)
	if err != nil {
		return fmt.Sprintf("System Error: Could not analyze logs due to %v", err)
	}

	f, err := os.Open(s.logPath)
	if err != nil {
		s.logger.Error("failed to open log file", zap.Error(err))
		return fmt.Sprintf("System Error: Could not analyze logs due to %v", err)
	}
	defer f.Close()

	var evidence []string
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if pattern.MatchString(line) {
			evidence = append(evidence, fmt.Sprintf("Line %d: %s", lineNo, line))
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("failed to read log file", zap.Error(err))
		return fmt.Sprintf("System Error: Could not analyze logs due to %v", err)
	}

	if len(evidence) == 0 {
		return fmt.Sprintf("No usage found for '%s' in analyzed logs.", columnName)
	}

	if len(evidence) > maxEvidenceLines {
		evidence = evidence[:maxEvidenceLines]
	}
	return "EVIDENCE FOUND IN LOGS:\n" + strings.Join(evidence, "\n")
}
