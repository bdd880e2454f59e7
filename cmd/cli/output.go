package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"

	timeLayout = "2006-01-02 15:04"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#05a167")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7005f")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0087d7"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8a8a"))
)

func validateOutputFormat(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (want table, json or yaml)", format)
	}
}

// printer renders command results. Structured formats encode the value
// itself; the table format uses the rows built by the command.
type printer struct {
	out    io.Writer
	format string
}

func newPrinter(out io.Writer, format string) *printer {
	return &printer{out: out, format: format}
}

func (p *printer) structured() bool {
	return p.format == outputJSON || p.format == outputYAML
}

// Print writes value in the structured format, or headers and rows as a table
func (p *printer) Print(value interface{}, headers []string, rows [][]string) error {
	switch p.format {
	case outputJSON:
		return p.encode(value)
	case outputYAML:
		encoder := yaml.NewEncoder(p.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		if len(rows) == 0 {
			_, err := fmt.Fprintln(p.out, mutedStyle.Render("No results"))
			return err
		}
		_, err := fmt.Fprintln(p.out, renderTable(headers, rows))
		return err
	}
}

// PrintLine writes one event; json output is one object per line
func (p *printer) PrintLine(value interface{}, text string) error {
	switch p.format {
	case outputJSON:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(data))
		return err
	case outputYAML:
		if _, err := fmt.Fprintln(p.out, "---"); err != nil {
			return err
		}
		return yaml.NewEncoder(p.out).Encode(value)
	default:
		_, err := fmt.Fprintln(p.out, text)
		return err
	}
}

// Success prints a confirmation in table mode and the value otherwise
func (p *printer) Success(value interface{}, message string) error {
	if p.structured() {
		return p.Print(value, nil, nil)
	}
	_, err := fmt.Fprintln(p.out, successStyle.Render("✓")+" "+message)
	return err
}

func (p *printer) encode(value interface{}) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

// keyValueRows turns ordered pairs into two-column rows
func keyValueRows(pairs ...string) [][]string {
	rows := make([][]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, []string{pairs[i], pairs[i+1]})
	}
	return rows
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func truncateText(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
