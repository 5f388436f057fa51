package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDocumentCreatesClaimDir(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "claims"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if err := store.WriteDocument("12345", "Nota_1.pdf", []byte("data")); err != nil {
		t.Fatalf("WriteDocument error: %v", err)
	}

	dir, err := store.ClaimDir("12345")
	if err != nil {
		t.Fatalf("ClaimDir error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Nota_1.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "data" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestRemoveClaimDirIsWholesale(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := store.WriteDocument("777", "Foto_1.jpg", []byte("x")); err != nil {
		t.Fatalf("WriteDocument error: %v", err)
	}

	if err := store.RemoveClaimDir("777"); err != nil {
		t.Fatalf("RemoveClaimDir error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.basePath, "777")); !os.IsNotExist(err) {
		t.Fatalf("claim dir should be gone, stat err = %v", err)
	}

	// Removing an absent dir is not an error.
	if err := store.RemoveClaimDir("777"); err != nil {
		t.Fatalf("RemoveClaimDir on absent dir: %v", err)
	}
}
