package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndAppend(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.txt")
	if err := WriteToFile(p, "a", "b"); err != nil {
		t.Fatalf("WriteToFile: %v", err)
	}
	if err := AppendToFile(p, "c"); err != nil {
		t.Fatalf("AppendToFile: %v", err)
	}
	bs, _ := os.ReadFile(p)
	if string(bs) != "a\nb\nc\n" {
		t.Errorf("unexpected content %q", bs)
	}

	fresh := filepath.Join(t.TempDir(), "records", "r.jsonl")
	AppendToFile(fresh, "{}", "{}")
	bs, _ = os.ReadFile(fresh)
	if string(bs) != "{}\n{}\n" {
		t.Errorf("unexpected content %q", bs)
	}
}

func TestWriteUnderFileFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteToFile(filepath.Join(blocker, "config.txt"), "a"); err == nil {
		t.Errorf("expected an error writing below a regular file")
	}
	if err := AppendToFile(filepath.Join(blocker, "r.jsonl"), "a"); err == nil {
		t.Errorf("expected an error appending below a regular file")
	}
}
