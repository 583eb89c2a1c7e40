package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_LoadAbsent(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, ok := store.Load("user@example.com"); ok {
		t.Error("expected Load to report absent for an unknown account")
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sessions"))
	blob := []byte(`[{"name":"WHMCSsession","value":"abc123"}]`)

	if err := store.Save("user@example.com", blob); err != nil {
		t.Fatalf("expected no error saving but got: %v", err)
	}

	got, ok := store.Load("user@example.com")
	if !ok {
		t.Fatal("expected Load to find the saved artifact")
	}
	if string(got) != string(blob) {
		t.Errorf("expected %q but got %q", blob, got)
	}
}

func TestStore_FileNameSanitization(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save("user@example.com", []byte("x")); err != nil {
		t.Fatalf("expected no error saving but got: %v", err)
	}

	want := filepath.Join(dir, "user_at_example_com.json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected artifact at %s but got: %v", want, err)
	}
}

func TestStore_AccountsDoNotShareArtifacts(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save("a@x.com", []byte("session-a")); err != nil {
		t.Fatalf("expected no error saving but got: %v", err)
	}
	if err := store.Save("b@x.com", []byte("session-b")); err != nil {
		t.Fatalf("expected no error saving but got: %v", err)
	}

	got, ok := store.Load("a@x.com")
	if !ok || string(got) != "session-a" {
		t.Errorf("expected a@x.com to keep its own artifact, got %q", got)
	}
}

func TestStore_EmptyArtifactIsAbsent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(filepath.Join(dir, "user_at_example_com.json"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Load("user@example.com"); ok {
		t.Error("expected an empty artifact to be treated as absent")
	}
}

func TestStore_SaveFailureLeavesOldArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.Save("user@example.com", []byte("old")); err != nil {
		t.Fatalf("expected no error saving but got: %v", err)
	}

	// Make the directory unwritable so the temp-file write fails
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	if err := store.Save("user@example.com", []byte("new")); err == nil {
		t.Skip("filesystem permits writes despite chmod (running as root?)")
	}

	got, ok := store.Load("user@example.com")
	if !ok || string(got) != "old" {
		t.Errorf("expected prior artifact to survive a failed save, got %q", got)
	}
}
