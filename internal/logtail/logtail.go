package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

var (
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	attrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#87AFFF"))
	levelStyle = map[string]lipgloss.Style{
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
)

// FormatLine renders one slog JSON record as
//
//	15:04:05 LEVEL message key=value ...
//
// with attributes sorted by key. Lines that are not JSON objects are
// returned unchanged. When color is false no styling is applied.
func FormatLine(line string, color bool) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return line
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return line
	}

	render := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	if ts, ok := record["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ts = parsed.Format(time.TimeOnly)
		}
		b.WriteString(render(timeStyle, ts))
		b.WriteByte(' ')
	}
	if lvl, ok := record["level"].(string); ok {
		b.WriteString(render(levelStyle[strings.ToUpper(lvl)], fmt.Sprintf("%-5s", strings.ToUpper(lvl))))
		b.WriteByte(' ')
	}
	if msg, ok := record["msg"].(string); ok {
		b.WriteString(msg)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		switch k {
		case "time", "level", "msg":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(render(attrStyle, k+"="))
		b.WriteString(formatValue(record[k]))
	}
	return b.String()
}

// FormatLines applies FormatLine to each line.
func FormatLines(lines []string, color bool) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = FormatLine(line, color)
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case map[string]any, []any:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	default:
		return fmt.Sprint(val)
	}
}
