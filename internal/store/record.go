// internal/store/record.go
package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"citylibrary/internal/catalog"
)

// ErrCorruptRecord is returned when a persisted line cannot be parsed.
var ErrCorruptRecord = errors.New("corrupt record")

const fieldSep = ","

// FormatBook renders a book as "id,title,author,category,issued".
// Fields are not escaped.
func FormatBook(b *catalog.Book) string {
	return strings.Join([]string{
		strconv.Itoa(b.ID),
		b.Title,
		b.Author,
		b.Category,
		strconv.FormatBool(b.Issued),
	}, fieldSep)
}

// ParseBook reads a line written by FormatBook. Extra fields are ignored and
// any issued value other than "true" (in any case) reads as false.
func ParseBook(line string) (*catalog.Book, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: book needs 5 fields, got %d", ErrCorruptRecord, len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: book id %q", ErrCorruptRecord, fields[0])
	}
	return &catalog.Book{
		ID:       id,
		Title:    fields[1],
		Author:   fields[2],
		Category: fields[3],
		Issued:   strings.EqualFold(fields[4], "true"),
	}, nil
}

// FormatMember renders a member as "id,name,email,[3, 7]".
func FormatMember(m *catalog.Member) string {
	return strings.Join([]string{
		strconv.Itoa(m.ID),
		m.Name,
		m.Email,
		m.IssuedList(),
	}, fieldSep)
}

// ParseMember reads the id, name and email of a member line. The issued
// list is not read back, so the member always comes back holding nothing.
func ParseMember(line string) (*catalog.Member, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: member needs 3 fields, got %d", ErrCorruptRecord, len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: member id %q", ErrCorruptRecord, fields[0])
	}
	return &catalog.Member{
		ID:    id,
		Name:  fields[1],
		Email: fields[2],
	}, nil
}
