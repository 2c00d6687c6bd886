package cli

import (
	"io"
	"slices"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pageviz/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	oldV, oldC, oldD := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { SetVersion(oldV, oldC, oldD) })

	SetVersion("1.0.0", "abc123", "2024-01-01")

	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}
	if buildinfo.Date != "2024-01-01" {
		t.Errorf("Date = %q, want %q", buildinfo.Date, "2024-01-01")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"build", "render", "search", "explore", "serve", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		toComplete string
		want       []string
		notWant    []string
	}{
		{"", []string{"svg", "dot", "dot.svg", "json"}, nil},
		{"svg,", []string{"svg,dot", "svg,json"}, []string{"svg,svg"}},
		{"svg,json,d", []string{"svg,json,dot", "svg,json,dot.svg"}, []string{"svg,json,json"}},
	}

	for _, tt := range tests {
		got, directive := completeFormats(nil, nil, tt.toComplete)
		for _, w := range tt.want {
			if !slices.Contains(got, w) {
				t.Errorf("completeFormats(%q) missing %q: %v", tt.toComplete, w, got)
			}
		}
		for _, nw := range tt.notWant {
			if slices.Contains(got, nw) {
				t.Errorf("completeFormats(%q) offers listed format %q", tt.toComplete, nw)
			}
		}
		if directive&cobra.ShellCompDirectiveNoSpace == 0 {
			t.Errorf("completeFormats(%q) should not append a space", tt.toComplete)
		}
	}
}

func TestCompleteOutlines(t *testing.T) {
	exts, directive := completeOutlines(nil, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt || !slices.Equal(exts, []string{"json"}) {
		t.Errorf("document completion = %v, %v", exts, directive)
	}
	if _, directive := completeOutlines(nil, []string{"report.json"}, ""); directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("query completion directive = %v", directive)
	}
}
