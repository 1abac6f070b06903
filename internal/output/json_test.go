package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "convert", map[string]int{"lines": 2}); err != nil {
		t.Fatal(err)
	}

	var got struct {
		OK      bool           `json:"ok"`
		Command string         `json:"command"`
		Version string         `json:"version"`
		Data    map[string]int `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !got.OK || got.Command != "convert" {
		t.Errorf("unexpected envelope %+v", got)
	}
	if got.Version == "" {
		t.Error("version should be set")
	}
	if got.Data["lines"] != 2 {
		t.Errorf("data = %v", got.Data)
	}
}

func TestExitCode(t *testing.T) {
	notDir := &fs.PathError{Op: "mkdir", Path: "/tmp/report.xlsx/out", Err: syscall.ENOTDIR}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("no input provided"), ExitUserError},
		{"missing file", fmt.Errorf("open week2.xlsx: %w", fs.ErrNotExist), ExitUserError},
		{"missing path error", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ExitUserError},
		{"wrapped io failure", fmt.Errorf("could not create output directory: %w", notDir), ExitSystemError},
		{"rename", &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}, ExitSystemError},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("%s: ExitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}
