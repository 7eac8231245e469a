package extract

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"trainforge/internal/domain"
)

// extractExcel reads the first worksheet only; additional sheets rarely carry
// the training material and would blow the prompt budget.
func (e *Extractor) extractExcel(src domain.SourceFile) (domain.ExtractedContent, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(src.Data))
	if err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "open workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return domain.ExtractedContent{}, extractionErr(src, "workbook has no sheets")
	}
	raw, err := wb.GetRows(sheets[0])
	if err != nil {
		return domain.ExtractedContent{}, extractionErr(src, "read sheet %q: %v", sheets[0], err)
	}

	var headers []string
	var rows []domain.Row
	for _, cells := range raw {
		if allEmpty(cells) {
			continue
		}
		if headers == nil {
			headers = append(headers, cells...)
			continue
		}
		row := make(domain.Row, len(headers))
		for i, h := range headers {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			row[h] = coerceCell(cell)
		}
		rows = append(rows, row)
	}
	if len(headers) == 0 {
		return domain.ExtractedContent{}, extractionErr(src, "sheet %q has no header row", sheets[0])
	}

	table := &domain.Table{Headers: headers, Rows: rows}
	return domain.ExtractedContent{
		Kind:  domain.KindData,
		Table: table,
		Text:  renderTableSummary(src.Name, table),
	}, nil
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
