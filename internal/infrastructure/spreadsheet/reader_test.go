package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "claims.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadClaimsCollectsProcessColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Segurado", "Processo"},
		{"Maria", "12345"},
		{"João", 67890},
		{"Ana", ""},
		{"Rui", "  555  "},
	})

	claims, err := NewReader().ReadClaims(path)
	if err != nil {
		t.Fatalf("ReadClaims error: %v", err)
	}

	want := []string{"12345", "67890", "555"}
	if len(claims) != len(want) {
		t.Fatalf("claims = %v, want %v", claims, want)
	}
	for i := range want {
		if claims[i] != want[i] {
			t.Fatalf("claims[%d] = %q, want %q", i, claims[i], want[i])
		}
	}
}

func TestReadClaimsRequiresHeaderColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Segurado", "Apólice"},
		{"Maria", "12345"},
	})

	if _, err := NewReader().ReadClaims(path); err == nil {
		t.Fatal("expected error for missing claim column")
	}
}

func TestReadClaimsMissingFile(t *testing.T) {
	if _, err := NewReader().ReadClaims(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
