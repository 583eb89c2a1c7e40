// Package session persists per-account browser session artifacts.
//
// The store is a filesystem-backed mapping from account email to a
// single opaque blob (serialized cookies). Artifacts are partitioned
// by account, so runs over different accounts never contend. The
// store never merges blobs and never shares them across accounts.
//
// Load failures are non-fatal by design: a missing or unreadable
// artifact simply means "no prior session" and the caller performs a
// fresh login. Saves are best-effort; the caller downgrades a save
// failure to a log line because the login itself already succeeded.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store maps account emails to session artifact files under dir.
type Store struct {
	dir string
}

// NewStore creates a session store rooted at dir.
//
// The directory is created lazily on the first Save, so a read-only
// invocation with no prior sessions never touches the filesystem.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the session artifact for the account, if one exists.
//
// Returns:
//   - []byte: Opaque session blob previously written by Save
//   - bool: false when no usable artifact exists (missing or unreadable)
func (s *Store) Load(email string) ([]byte, bool) {
	blob, err := os.ReadFile(s.path(email))
	if err != nil {
		return nil, false
	}
	if len(blob) == 0 {
		return nil, false
	}
	return blob, true
}

// Save writes the session artifact for the account.
//
// The write goes through a temp file and a rename so a crash mid-write
// leaves the previous artifact intact rather than a truncated one.
func (s *Store) Save(email string, blob []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	target := s.path(email)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// path returns the artifact file for an account email.
//
// The email is flattened into a safe file name: "@" becomes "_at_"
// and dots become underscores, e.g. "user@example.com" →
// "user_at_example_com.json".
func (s *Store) path(email string) string {
	safe := strings.ReplaceAll(email, "@", "_at_")
	safe = strings.ReplaceAll(safe, ".", "_")
	return filepath.Join(s.dir, safe+".json")
}
