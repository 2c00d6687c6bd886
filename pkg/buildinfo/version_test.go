package buildinfo

import (
	"strings"
	"testing"
)

func stamp(t *testing.T, v, c, d string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
	Version, Commit, Date = v, c, d
}

func TestGet(t *testing.T) {
	stamp(t, "v1.2.0", "3f9a1c2d8e7b6a5f", "2026-03-01T10:00:00Z")

	i := Get()
	if i.Version != "v1.2.0" || i.ShortCommit() != "3f9a1c2" {
		t.Errorf("Get() = %+v", i)
	}
	if got, want := i.String(), "pageviz v1.2.0 (3f9a1c2, 2026-03-01T10:00:00Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !strings.Contains(Template(), "commit: 3f9a1c2d8e7b6a5f") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestGetUnstamped(t *testing.T) {
	stamp(t, unstamped, "none", "unknown")

	// Test binaries report no module version, so the placeholder stays.
	if i := Get(); i.Version != unstamped || i.ShortCommit() != "none" {
		t.Errorf("Get() = %+v", i)
	}
}
