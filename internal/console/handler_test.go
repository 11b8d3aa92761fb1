package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citylibrary/internal/catalog"
	"citylibrary/internal/store"
)

type session struct {
	bookPath   string
	memberPath string
	service    catalog.Service
}

func newSession(t *testing.T) *session {
	t.Helper()
	dir := t.TempDir()
	s := &session{
		bookPath:   filepath.Join(dir, "books.txt"),
		memberPath: filepath.Join(dir, "members.txt"),
	}
	s.service = catalog.NewService(store.NewFileStore(s.bookPath, s.memberPath),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.service.Load(context.Background()))
	return s
}

func (s *session) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	h := NewHandler(s.service, in, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, h.Run(context.Background()))
	return out.String()
}

func (s *session) readBooks(t *testing.T) string {
	t.Helper()
	raw, err := os.ReadFile(s.bookPath)
	require.NoError(t, err)
	return string(raw)
}

func TestIssueFlow(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"1", "1", "Dune", "Frank Herbert", "SciFi",
		"2", "10", "Ann", "ann@example.org",
		"3", "10", "1",
		"3", "10", "1",
		"7",
	)

	assert.Contains(t, out, "=== City Library Digital Management System ===")
	assert.Contains(t, out, "Book added successfully!")
	assert.Contains(t, out, "Member added successfully!")
	assert.Contains(t, out, "Book issued successfully!")
	assert.Contains(t, out, "Book already issued!")
	assert.True(t, strings.HasSuffix(out, "Exiting...\n"))

	assert.Equal(t, "1,Dune,Frank Herbert,SciFi,true\n", s.readBooks(t))
	raw, err := os.ReadFile(s.memberPath)
	require.NoError(t, err)
	assert.Equal(t, "10,Ann,ann@example.org,[1]\n", string(raw))
}

func TestIssueMessages(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"3", "10", "1",
		"1", "1", "Dune", "Frank Herbert", "SciFi",
		"3", "10", "1",
		"7",
	)

	assert.Equal(t, 1, strings.Count(out, "Book not found!"))
	assert.Equal(t, 1, strings.Count(out, "Member not found!"))
}

func TestReturnFlow(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"4", "1",
		"1", "1", "Dune", "Frank Herbert", "SciFi",
		"2", "10", "Ann", "ann@example.org",
		"3", "10", "1",
		"4", "1",
		"7",
	)

	assert.Contains(t, out, "Book not found!")
	assert.Contains(t, out, "Book returned successfully!")
	assert.Equal(t, "1,Dune,Frank Herbert,SciFi,false\n", s.readBooks(t))
}

func TestSearchAndSort(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"1", "1", "Zebra", "Amy", "Animals",
		"1", "2", "Apple", "Zoe", "Fruit",
		"1", "3", "Mango", "Bob", "Fruit",
		"5", "fruit",
		"6", "2",
		"7",
	)

	search := out[strings.Index(out, "Enter keyword to search: "):strings.Index(out, "1. Sort by Title")]
	assert.Contains(t, search, "Title: Apple")
	assert.Contains(t, search, "Title: Mango")
	assert.NotContains(t, search, "Title: Zebra")

	sorted := out[strings.Index(out, "2. Sort by Author"):]
	zebra := strings.Index(sorted, "Title: Zebra")
	mango := strings.Index(sorted, "Title: Mango")
	apple := strings.Index(sorted, "Title: Apple")
	assert.True(t, zebra < mango && mango < apple, "sorted by author: %s", sorted)
	assert.Contains(t, sorted, "Book ID: 2\nTitle: Apple\nAuthor: Zoe\nCategory: Fruit\nIssued: No\n")
}

func TestInvalidInput(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"9",
		"abc",
		"1", "not-a-number",
		"7",
	)

	assert.Contains(t, out, "Invalid choice!")
	assert.Equal(t, 2, strings.Count(out, "Invalid number!"))
	assert.Empty(t, s.readBooks(t))
}

func TestEndOfInputSaves(t *testing.T) {
	s := newSession(t)

	out := s.run(t, "1", "1", "Dune", "Frank Herbert", "SciFi")

	assert.True(t, strings.HasSuffix(out, "Exiting...\n"))
	assert.Equal(t, "1,Dune,Frank Herbert,SciFi,false\n", s.readBooks(t))
}

func TestEndOfInputMidCommand(t *testing.T) {
	s := newSession(t)

	out := s.run(t, "1", "1", "Dune")

	assert.NotContains(t, out, "Book added successfully!")
	assert.True(t, strings.HasSuffix(out, "Exiting...\n"))
	assert.Empty(t, s.readBooks(t))
}

func TestSaveFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	// Book path is a directory, so every save fails.
	svc := catalog.NewService(store.NewFileStore(dir, filepath.Join(dir, "members.txt")),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	var out bytes.Buffer
	in := strings.NewReader("1\n1\nDune\nFrank Herbert\nSciFi\n7\n")
	require.NoError(t, NewHandler(svc, in, &out, nil).Run(context.Background()))

	assert.Contains(t, out.String(), "Error saving catalog!\nBook added successfully!")
	book, err := svc.GetBook(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}

func TestLongInputLine(t *testing.T) {
	s := newSession(t)
	title := strings.Repeat("x", 70000)

	out := s.run(t, "1", "1", title, "A", "C", "7")

	assert.Contains(t, out, "Book added successfully!")
	assert.True(t, strings.HasSuffix(out, "Exiting...\n"))
	assert.Equal(t, "1,"+title+",A,C,false\n", s.readBooks(t))
}

func TestReadFailureSavesBeforeReturning(t *testing.T) {
	s := newSession(t)
	readErr := errors.New("terminal gone")
	in := io.MultiReader(
		strings.NewReader("1\n1\nDune\nFrank Herbert\nSciFi\n"),
		iotest.ErrReader(readErr),
	)

	var out bytes.Buffer
	err := NewHandler(s.service, in, &out, slog.New(slog.NewTextHandler(io.Discard, nil))).Run(context.Background())

	require.ErrorIs(t, err, readErr)
	assert.True(t, strings.HasSuffix(out.String(), "Exiting...\n"))
	assert.Equal(t, "1,Dune,Frank Herbert,SciFi,false\n", s.readBooks(t))
}

func TestReportLoadNamesFailingFiles(t *testing.T) {
	tests := []struct {
		name    string
		books   string
		members string
		want    string
	}{
		{"books", "1,Dune\n", "10,Ann,ann@example.org,[]\n", "Error loading books.\n"},
		{"members", "1,Dune,Frank Herbert,SciFi,false\n", "ten,Ann,ann@example.org,[]\n", "Error loading members.\n"},
		{"both", "x\n", "y\n", "Error loading books.\nError loading members.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			bookPath := filepath.Join(dir, "books.txt")
			memberPath := filepath.Join(dir, "members.txt")
			require.NoError(t, os.WriteFile(bookPath, []byte(tt.books), 0o644))
			require.NoError(t, os.WriteFile(memberPath, []byte(tt.members), 0o644))
			svc := catalog.NewService(store.NewFileStore(bookPath, memberPath),
				slog.New(slog.NewTextHandler(io.Discard, nil)))

			err := svc.Load(context.Background())
			require.Error(t, err)

			var out bytes.Buffer
			NewHandler(svc, strings.NewReader(""), &out, nil).ReportLoad(err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
