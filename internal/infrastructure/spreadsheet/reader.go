// Package spreadsheet reads operator-supplied claim lists from xlsx
// workbooks.
package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// claimHeader is the column the operator fills with claim numbers.
const claimHeader = "Processo"

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadClaims returns the non-empty values of the claim column on the first
// sheet, in row order. The header row itself is not a claim.
func (r *Reader) ReadClaims(path string) ([]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open claim sheet: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("claim sheet %s has no sheets", path)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read claim sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("claim sheet %s is empty", path)
	}

	col := -1
	for i, cell := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(cell), claimHeader) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("claim sheet %s has no %q column", path, claimHeader)
	}

	var claims []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[col]); v != "" {
			claims = append(claims, v)
		}
	}
	return claims, nil
}
