package util

import (
	"os"
	"path/filepath"
	"strings"
)

// WriteToFile writes the strings to savePath one per line, creating the parent directory
func WriteToFile(savePath string, content ...string) error {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(savePath, []byte(strings.Join(content, "\n")+"\n"), 0644)
}

// AppendToFile appends every string as its own line, used for jsonl records
func AppendToFile(savePath string, content ...string) error {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}
