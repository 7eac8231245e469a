package extract

import (
	"fmt"
	"strconv"
	"strings"

	"trainforge/internal/domain"
)

// summaryRowLimit caps how many rows the textual flattening carries.
const summaryRowLimit = 20

// extractCSV parses comma-separated data with a quote-aware splitter and
// builds both the structured table and its textual flattening.
func (e *Extractor) extractCSV(src domain.SourceFile) (domain.ExtractedContent, error) {
	table, err := parseCSV(string(src.Data))
	if err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "%v", err)
	}
	return domain.ExtractedContent{
		Kind:  domain.KindData,
		Table: table,
		Text:  renderTableSummary(src.Name, table),
	}, nil
}

// parseCSV splits line by line with a quote state machine: a quote toggles
// the in-quotes state and a comma inside quotes is literal. The first
// non-empty line is the header row; empty lines are skipped. Cell values
// that parse fully as a number are coerced to float64, everything else stays
// a string.
func parseCSV(raw string) (*domain.Table, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var headers []string
	var rows []domain.Row
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitCSVLine(line)
		if headers == nil {
			headers = fields
			continue
		}
		row := make(domain.Row, len(headers))
		for i, h := range headers {
			var cell string
			if i < len(fields) {
				cell = fields[i]
			}
			row[h] = coerceCell(cell)
		}
		rows = append(rows, row)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("csv has no header row")
	}
	return &domain.Table{Headers: headers, Rows: rows}, nil
}

func splitCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// coerceCell keeps the source's best-effort numeric coercion: a full
// ParseFloat success means number, anything else stays a string.
func coerceCell(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return ""
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return cell
}

// renderTableSummary flattens tabular content into the text form that
// accompanies the structured rows into the prompt preview.
func renderTableSummary(fileName string, table *domain.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Data file: %s\n", fileName)
	fmt.Fprintf(&b, "Total Rows: %d\n", len(table.Rows))
	fmt.Fprintf(&b, "Total Columns: %d\n", len(table.Headers))
	fmt.Fprintf(&b, "Headers: %s\n", strings.Join(table.Headers, ", "))
	limit := len(table.Rows)
	if limit > summaryRowLimit {
		limit = summaryRowLimit
	}
	for i := 0; i < limit; i++ {
		fmt.Fprintf(&b, "Row %d: %s\n", i+1, RenderRow(table.Headers, table.Rows[i]))
	}
	if len(table.Rows) > limit {
		fmt.Fprintf(&b, "...%d more rows\n", len(table.Rows)-limit)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderRow renders one row as key="value" pairs in header order.
func RenderRow(headers []string, row domain.Row) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		parts = append(parts, fmt.Sprintf("%s=%q", h, formatCell(row[h])))
	}
	return strings.Join(parts, " ")
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
