// Package localfs persists downloaded documents under one directory per
// claim.
package localfs

import (
	"fmt"
	"os"
	"path/filepath"
)

type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/claims"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// ClaimDir returns the claim's output directory, creating it on demand.
func (s *Store) ClaimDir(claimID string) (string, error) {
	dir := filepath.Join(s.basePath, claimID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create claim dir: %w", err)
	}
	return dir, nil
}

func (s *Store) WriteDocument(claimID, filename string, data []byte) error {
	dir, err := s.ClaimDir(claimID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// RemoveClaimDir deletes the claim's directory wholesale. A claim's output
// directory must never hold a partial file set after a reported failure.
func (s *Store) RemoveClaimDir(claimID string) error {
	if err := os.RemoveAll(filepath.Join(s.basePath, claimID)); err != nil {
		return fmt.Errorf("remove claim dir: %w", err)
	}
	return nil
}
