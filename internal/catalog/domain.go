// internal/catalog/domain.go
package catalog

import (
	"strconv"
	"strings"
)

// Book represents a single catalogued book.
type Book struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Issued   bool   `json:"issued"`
}

// Member represents a library member and the books currently held.
type Member struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IssuedBooks []int  `json:"issued_books"`
}

// IssuedList renders the held book ids as "[3, 7]".
func (m *Member) IssuedList() string {
	ids := make([]string, len(m.IssuedBooks))
	for i, id := range m.IssuedBooks {
		ids[i] = strconv.Itoa(id)
	}
	return "[" + strings.Join(ids, ", ") + "]"
}

func (m *Member) addIssuedBook(bookID int) {
	m.IssuedBooks = append(m.IssuedBooks, bookID)
}

// removeIssuedBook drops the first occurrence of bookID, if any.
func (m *Member) removeIssuedBook(bookID int) {
	for i, id := range m.IssuedBooks {
		if id == bookID {
			m.IssuedBooks = append(m.IssuedBooks[:i], m.IssuedBooks[i+1:]...)
			return
		}
	}
}

func (b *Book) clone() *Book {
	c := *b
	return &c
}

func (m *Member) clone() *Member {
	c := *m
	c.IssuedBooks = append([]int(nil), m.IssuedBooks...)
	return &c
}

// SortCriterion selects the ordering used by SortBooks.
type SortCriterion string

const (
	SortByTitle  SortCriterion = "title"
	SortByAuthor SortCriterion = "author"
)
