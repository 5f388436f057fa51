package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

func TestElectricalDownloadSkipsFailedDocuments(t *testing.T) {
	store, base := newTestStore(t)
	sess := newSessionFake()
	sess.electricalErr[2] = errors.New("display endpoint unavailable")

	d := NewElectricalDownloader(store, ElectricalConfig{}, discard())

	records := domain.AssignSequences([]domain.DocumentRecord{
		{Name: "Laudo", StorageID: 1, TypeCode: 9},
		{Name: "Laudo", StorageID: 2, TypeCode: 9},
		{Name: "Conta de Luz", StorageID: 3, TypeCode: 4},
	})
	n, err := d.Download(context.Background(), sess, "777", records)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != 2 {
		t.Fatalf("downloaded = %d, want 2", n)
	}

	// Partial output stays: the claim directory survives the skipped
	// document.
	for _, name := range []string{"Laudo_1.pdf", "Conta de Luz_1.pdf"} {
		if _, err := os.Stat(filepath.Join(base, "777", name)); err != nil {
			t.Fatalf("expected output file %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "777", "Laudo_2.pdf")); !os.IsNotExist(err) {
		t.Fatalf("skipped document should not be written")
	}
}

func TestElectricalDownloadInvalidExtensionIsPerDocument(t *testing.T) {
	store, _ := newTestStore(t)
	sess := newSessionFake()
	sess.electricalErr[1] = domain.WrapError(domain.ErrInvalidExtension, "classify extension", errors.New("no extension"))

	d := NewElectricalDownloader(store, ElectricalConfig{}, discard())

	records := []domain.DocumentRecord{
		{Name: "Laudo", StorageID: 1, TypeCode: 9, Sequence: 1},
		{Name: "Foto", StorageID: 3, TypeCode: 4, Sequence: 1},
	}
	n, err := d.Download(context.Background(), sess, "777", records)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if n != 1 {
		t.Fatalf("downloaded = %d, want 1", n)
	}
}
