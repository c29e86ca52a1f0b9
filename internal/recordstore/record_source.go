// Package recordstore is for reading and caching the evaluation results log.
package recordstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// Scanner buffer sizing. Prompt and response texts can make single lines long.
const (
	initialScanBuf = 64 * 1024
	maxScanBuf     = 8 * 1024 * 1024
)

// JSONLSource reads and appends evaluation records in the JSON-lines results log.
type JSONLSource struct {
	path string
}

var _ contract.RecordSource = &JSONLSource{} // Compile-time check

// NewJSONLSource returns a source backed by the log at path.
func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{path: path}
}

// Load implements the RecordSource interface. A missing log reads as empty.
// Any malformed line fails the whole load so a half-read log is never served.
func (s *JSONLSource) Load(ctx context.Context) ([]schema.EvaluationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, contract.StorageError(err, "cannot open results log %s", s.path)
	}
	defer func() { _ = file.Close() }()

	var records []schema.EvaluationRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, initialScanBuf), maxScanBuf)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record schema.EvaluationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, contract.ParseError(err, "malformed record at %s:%d", s.path, lineNo)
		}
		normalizeRecord(&record)
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, contract.StorageError(err, "cannot read results log %s", s.path)
	}

	return records, nil
}

// Append implements the RecordSource interface. The parent directory is
// created on first use so a fresh checkout can evaluate straight away.
func (s *JSONLSource) Append(ctx context.Context, records ...schema.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return contract.StorageError(err, "cannot create results directory %s", dir)
		}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return contract.StorageError(err, "cannot open results log %s", s.path)
	}
	defer func() { _ = file.Close() }()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return contract.StorageError(err, "cannot encode record %s", record.ID)
		}
		if _, err := writer.Write(append(line, '\n')); err != nil {
			return contract.StorageError(err, "cannot write results log %s", s.path)
		}
	}
	if err := writer.Flush(); err != nil {
		return contract.StorageError(err, "cannot write results log %s", s.path)
	}

	return nil
}

// normalizeRecord recomputes the derived status fields so the overall score
// stays the single source of truth, whatever the log claims.
func normalizeRecord(record *schema.EvaluationRecord) {
	status := &record.ZombieStatus
	status.Severity = schema.SeverityForScore(status.OverallScore)
	status.IsZombie = status.Severity != schema.SeverityAlive
	status.VisualTheme = schema.ThemeForSeverity(status.Severity)
	status.RevivalPriority = schema.PriorityForSeverity(status.Severity)
}
