package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "tsconv"}
	root.AddCommand(&cobra.Command{Use: "convert", Short: "Convert a timesheet export"})
	root.AddCommand(&cobra.Command{Use: "preview", Short: "Preview a weekly report"})
	root.AddCommand(NewCommand(root))
	return root
}

func runCompletion(t *testing.T, shell string) string {
	t.Helper()
	root := testRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", shell})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion %s: %v", shell, err)
	}
	return buf.String()
}

func TestCompletionScripts(t *testing.T) {
	tests := map[string]string{
		"bash":       "_tsconv",
		"zsh":        "compdef",
		"fish":       "complete -c tsconv",
		"powershell": "tsconv",
	}
	for shell, marker := range tests {
		if out := runCompletion(t, shell); !strings.Contains(out, marker) {
			t.Errorf("%s completion should contain %q", shell, marker)
		}
	}
}

func TestCompletionUnsupportedShell(t *testing.T) {
	root := testRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
