package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorfennell/studymate/internal/storage"
	"github.com/conorfennell/studymate/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one CLI invocation against db and returns its stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--db", db, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	require.NoError(t, err, "studymate %v", args)
	return out
}

func TestCLI_StacksAndCards(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	assert.Contains(t, mustRun(t, db, "stack", "list"), "No stacks yet.")
	assert.Contains(t, mustRun(t, db, "stack", "add", "Spanish"), `Added stack "Spanish"`)
	assert.Contains(t, mustRun(t, db, "stack", "add", "  "), "nothing added")
	mustRun(t, db, "stack", "add", "French", "Verbs")

	out := mustRun(t, db, "stack", "list")
	assert.Contains(t, out, "Spanish")
	assert.Contains(t, out, "French Verbs")

	mustRun(t, db, "card", "add", "1", "hola", "hello")
	mustRun(t, db, "card", "add", "spanish", "adios", "goodbye")
	assert.Contains(t, mustRun(t, db, "card", "add", "1", "gato", " "), "nothing added")

	out = mustRun(t, db, "stack", "show", "Spanish")
	assert.Contains(t, out, "hola")
	assert.Contains(t, out, "goodbye")
	assert.Contains(t, out, "active: no")

	mustRun(t, db, "stack", "activate", "1", "2")
	mustRun(t, db, "stack", "deactivate", "French Verbs")
	assert.Contains(t, mustRun(t, db, "stack", "show", "1"), "active: yes")

	mustRun(t, db, "card", "delete", "1", "1")
	out = mustRun(t, db, "stack", "show", "1")
	assert.NotContains(t, out, "hola")
	assert.Contains(t, out, "adios")

	mustRun(t, db, "stack", "rename", "2", "French")
	assert.Contains(t, mustRun(t, db, "stack", "list"), "French")

	mustRun(t, db, "stack", "delete", "French")
	assert.NotContains(t, mustRun(t, db, "stack", "list"), "French")

	_, err := run(t, db, "stack", "show", "9")
	assert.ErrorIs(t, err, study.ErrStackNotFound)
	_, err = run(t, db, "card", "delete", "1", "nope")
	assert.ErrorIs(t, err, study.ErrCardNotFound)
}

func TestCLI_Settings(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	assert.Contains(t, mustRun(t, db, "settings"), "Reminders: off")
	assert.Contains(t, mustRun(t, db, "settings", "--interval", "20"), "every 20 minutes")
	assert.Contains(t, mustRun(t, db, "settings"), "every 20 minutes")
	assert.Contains(t, mustRun(t, db, "settings", "-i", "0"), "Reminders: off")

	_, err := run(t, db, "settings", "--interval", "-5")
	assert.ErrorIs(t, err, study.ErrInvalidInterval)
}

func TestCLI_ImportAndHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cli.db")
	notes := filepath.Join(dir, "notes")
	require.NoError(t, os.MkdirAll(notes, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(notes, "spanish.md"),
		[]byte("Q: hola\nA: hello\n---\nQ: gato\nA: cat\n"), 0o644))

	out := mustRun(t, db, "import", notes, "--stack", "Spanish", "--repos-dir", filepath.Join(dir, "repos"))
	assert.Contains(t, out, "Found 2 cards: 2 added, 0 skipped")

	out = mustRun(t, db, "import", notes, "-s", "spanish")
	assert.Contains(t, out, "0 added, 2 skipped")

	_, err := run(t, db, "import", notes)
	assert.Error(t, err, "--stack is required")

	assert.Contains(t, mustRun(t, db, "history"), "No reviews yet.")
}

func TestResolveStack(t *testing.T) {
	ctx := context.Background()
	lib := openLibrary(t)

	spanish, err := lib.AddStack(ctx, "Spanish")
	require.NoError(t, err)
	french, err := lib.AddStack(ctx, "French")
	require.NoError(t, err)

	tests := []struct {
		ref  string
		want string
	}{
		{ref: spanish.ID, want: spanish.ID},
		{ref: "2", want: french.ID},
		{ref: "1", want: spanish.ID},
		{ref: "french", want: french.ID},
	}
	for _, tt := range tests {
		got, err := resolveStack(lib, tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got.ID, tt.ref)
	}

	for _, ref := range []string{"0", "3", "German"} {
		_, err := resolveStack(lib, ref)
		assert.ErrorIs(t, err, study.ErrStackNotFound, ref)
	}
}

func TestResolveStack_NumericName(t *testing.T) {
	ctx := context.Background()
	lib := openLibrary(t)
	spanish, err := lib.AddStack(ctx, "Spanish")
	require.NoError(t, err)
	year, err := lib.AddStack(ctx, "2024")
	require.NoError(t, err)

	got, err := resolveStack(lib, "2024")
	require.NoError(t, err)
	assert.Equal(t, year.ID, got.ID, "out-of-range position falls back to the name")

	got, err = resolveStack(lib, "1")
	require.NoError(t, err)
	assert.Equal(t, spanish.ID, got.ID, "position wins while it is in range")
}

func TestResolveCard(t *testing.T) {
	ctx := context.Background()
	lib := openLibrary(t)
	created, err := lib.AddStack(ctx, "Spanish")
	require.NoError(t, err)
	hola, err := lib.AddCard(ctx, created.ID, "hola", "hello")
	require.NoError(t, err)
	gato, err := lib.AddCard(ctx, created.ID, "gato", "cat")
	require.NoError(t, err)
	stack, err := lib.Stack(created.ID)
	require.NoError(t, err)

	c, err := resolveCard(lib, stack, "2")
	require.NoError(t, err)
	assert.Equal(t, gato.ID, c.ID)

	c, err = resolveCard(lib, stack, hola.ID)
	require.NoError(t, err)
	assert.Equal(t, "hola", c.Front)

	for _, ref := range []string{"0", "3", "c9"} {
		_, err := resolveCard(lib, stack, ref)
		assert.ErrorIs(t, err, study.ErrCardNotFound, ref)
	}
}

func openLibrary(t *testing.T) *study.Library {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Path: filepath.Join(t.TempDir(), "resolve.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	lib, err := study.Load(ctx, db)
	require.NoError(t, err)
	return lib
}
