// internal/store/filestore.go
package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"citylibrary/internal/catalog"
)

// Default file names used when no configuration overrides them.
const (
	DefaultBookFile   = "books.txt"
	DefaultMemberFile = "members.txt"
)

// FileStore keeps books and members in two line-oriented text files, one
// record per line. Every Save rewrites both files completely.
type FileStore struct {
	bookPath   string
	memberPath string
	tracer     trace.Tracer
}

var _ catalog.Store = (*FileStore)(nil)

// NewFileStore creates a store over the given book and member files.
func NewFileStore(bookPath, memberPath string) *FileStore {
	return &FileStore{
		bookPath:   bookPath,
		memberPath: memberPath,
		tracer:     otel.Tracer("citylibrary/store"),
	}
}

// Load reads both files, creating any that are missing. Reading a file
// stops at its first bad line; the records before it are still returned.
// Failures from both files are joined.
func (fs *FileStore) Load(ctx context.Context) ([]*catalog.Book, []*catalog.Member, error) {
	ctx, span := fs.tracer.Start(ctx, "store.load",
		trace.WithAttributes(
			attribute.String("file.books", fs.bookPath),
			attribute.String("file.members", fs.memberPath),
		),
	)
	defer span.End()

	books, bookErr := readRecords(fs.bookPath, ParseBook)
	if bookErr != nil {
		bookErr = fmt.Errorf("%w: %w", catalog.ErrLoadBooks, bookErr)
	}
	members, memberErr := readRecords(fs.memberPath, ParseMember)
	if memberErr != nil {
		memberErr = fmt.Errorf("%w: %w", catalog.ErrLoadMembers, memberErr)
	}

	span.SetAttributes(
		attribute.Int("books.read", len(books)),
		attribute.Int("members.read", len(members)),
	)

	err := errors.Join(bookErr, memberErr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
	}
	return books, members, err
}

// Save overwrites both files. A failure writing one file does not stop the
// other from being written.
func (fs *FileStore) Save(ctx context.Context, books []*catalog.Book, members []*catalog.Member) error {
	_, span := fs.tracer.Start(ctx, "store.save",
		trace.WithAttributes(
			attribute.Int("books.count", len(books)),
			attribute.Int("members.count", len(members)),
		),
	)
	defer span.End()

	bookErr := writeRecords(fs.bookPath, books, FormatBook)
	if bookErr != nil {
		bookErr = fmt.Errorf("save books: %w", bookErr)
	}
	memberErr := writeRecords(fs.memberPath, members, FormatMember)
	if memberErr != nil {
		memberErr = fmt.Errorf("save members: %w", memberErr)
	}

	err := errors.Join(bookErr, memberErr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
	}
	return err
}

func readRecords[T any](path string, parse func(string) (T, error)) ([]T, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []T
	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return records, fmt.Errorf("read %s: %w", path, readErr)
		}
		if line == "" && readErr != nil {
			return records, nil
		}

		lineNo++
		rec, err := parse(trimEOL(line))
		if err != nil {
			return records, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		records = append(records, rec)

		if readErr != nil {
			return records, nil
		}
	}
}

// trimEOL drops a trailing "\n" or "\r\n".
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func writeRecords[T any](path string, records []T, format func(T) string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		if _, err := w.WriteString(format(rec) + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
