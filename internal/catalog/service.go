// internal/catalog/service.go
package catalog

import (
	"context"
)

// Service defines the interface for the catalog service.
type Service interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	AddBook(ctx context.Context, id int, title, author, category string) (*Book, error)
	AddMember(ctx context.Context, id int, name, email string) (*Member, error)
	IssueBook(ctx context.Context, memberID, bookID int) error
	ReturnBook(ctx context.Context, bookID int) error
	SearchBooks(ctx context.Context, keyword string) []*Book
	SortBooks(ctx context.Context, by SortCriterion) []*Book
	GetBook(ctx context.Context, id int) (*Book, error)
	GetMember(ctx context.Context, id int) (*Member, error)
}

// Store persists the catalog collections.
//
// Load returns whatever records it could read even when err is non-nil.
// Its error wraps ErrLoadBooks and/or ErrLoadMembers.
type Store interface {
	Load(ctx context.Context) ([]*Book, []*Member, error)
	Save(ctx context.Context, books []*Book, members []*Member) error
}
