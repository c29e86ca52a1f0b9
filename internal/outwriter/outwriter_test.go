package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

func TestCreateFormatters(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	assert.Equal(t, "3.14", fmtFloat(3.14159))
	assert.Equal(t, "0.50", fmtFloat(0.5))
	assert.Equal(t, "%d", intFmt)

	fmtFloat, _ = createFormatters(0)
	assert.Equal(t, "3", fmtFloat(3.14159))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, map[string]int{"total": 42})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "  \"total\": 42")

	var parsed map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, 42, parsed["total"])
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"metric", "value"}, func(w *csv.Writer) error {
		return w.Write([]string{"total", "42"})
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "metric,value", lines[0])
	assert.Equal(t, "total,42", lines[1])
}

func TestWriteWithFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "out.txt")
	err := writeWithFile(outputFile, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}, "Wrote text")
	require.NoError(t, err)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestHeaderLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{UseEmojis: false}
	require.NoError(t, headerLine(&buf, cfg, "🪦", "Graveyard Statistics"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Graveyard Statistics", lines[0])
	assert.Equal(t, strings.Repeat("=", 20), lines[1])
}

func TestHeaderLineWithEmoji(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{UseEmojis: true}
	require.NoError(t, headerLine(&buf, cfg, "🪦", "Graveyard Statistics"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "🪦 Graveyard Statistics", lines[0])
	// Underline covers the emoji and the space as one rune each
	assert.Equal(t, strings.Repeat("=", 22), lines[1])
}

func TestSectionLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{UseEmojis: false}
	require.NoError(t, sectionLine(&buf, cfg, "💀", "Severity breakdown"))
	assert.Equal(t, "Severity breakdown:\n", buf.String())

	buf.Reset()
	cfg.UseEmojis = true
	require.NoError(t, sectionLine(&buf, cfg, "💀", "Severity breakdown"))
	assert.Equal(t, "💀 Severity breakdown:\n", buf.String())
}

func TestSeverityCell(t *testing.T) {
	cfg := &contract.Config{UseColors: false}
	assert.Equal(t, "Alive", severityCell(cfg, schema.SeverityAlive))
	assert.Equal(t, "Skeletal", severityCell(cfg, schema.SeveritySkeletal))

	// Colored labels still carry the plain text
	cfg.UseColors = true
	assert.Contains(t, severityCell(cfg, schema.SeverityRotting), "Rotting")
}

func TestStatusCell(t *testing.T) {
	cfg := &contract.Config{UseColors: false}
	assert.Equal(t, "Pending", statusCell(cfg, schema.AttemptPending))
	assert.Equal(t, "Success", statusCell(cfg, schema.AttemptSuccess))
	assert.Equal(t, "Failed", statusCell(cfg, schema.AttemptFailed))
}

func TestGetMaxPromptWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{name: "narrow terminal clamps to minimum", width: 80, expected: 15},
		{name: "mid terminal uses available space", width: 100, expected: 25},
		{name: "wide terminal clamps to maximum", width: 200, expected: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, GetMaxPromptWidth(cfg))
		})
	}
}
