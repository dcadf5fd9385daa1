package testutil

import "testing"

// Given opens a scenario; Then states what must hold inside it. Both are
// plain subtests so `go test -run` can select a single branch.
func Given(t *testing.T, setup string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+setup, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+outcome, fn)
}
