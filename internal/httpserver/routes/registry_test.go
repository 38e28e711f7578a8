package routes

import (
	"slices"
	"testing"
)

func TestGroupsAreRegistered(t *testing.T) {
	got := Groups()
	for _, want := range []string{"bookmarks", "categories", "lookups", "probes", "reload"} {
		if !slices.Contains(got, want) {
			t.Errorf("Groups() = %v, missing %q", got, want)
		}
	}
}
