package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "01.wav")
	b := filepath.Join(dir, "02.wav")
	writeTestFile(t, a, "alpha")
	writeTestFile(t, b, "beta")

	first, err := Fingerprint([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Fingerprint([]string{b, a})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("fingerprint depends on order: %s vs %s", first, second)
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "01.wav")
	writeTestFile(t, a, "alpha")
	before, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, a, "alphb")
	after, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Fatal("expected fingerprint to change after content edit")
	}
}

func TestFingerprintMissingFile(t *testing.T) {
	if _, err := Fingerprint([]string{filepath.Join(t.TempDir(), "absent.wav")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "blob")
	if err := WriteFileAtomic(path, []byte("one"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Fatalf("content = %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}
}
