// internal/catalog/errors.go
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyIssued = errors.New("book already issued")
	// ErrPersist is returned when a mutation was applied in memory but could
	// not be written to disk.
	ErrPersist = errors.New("persist catalog")

	// A Store wraps read failures in these so callers can tell which
	// collection came back incomplete.
	ErrLoadBooks   = errors.New("load books")
	ErrLoadMembers = errors.New("load members")
)

// Entity kinds reported by NotFoundError.
const (
	KindBook   = "book"
	KindMember = "member"
)

// NotFoundError reports an unknown book or member id.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func bookNotFound(id int) error {
	return &NotFoundError{Kind: KindBook, ID: id}
}

func memberNotFound(id int) error {
	return &NotFoundError{Kind: KindMember, ID: id}
}

// IsNotFoundKind reports whether err is a NotFoundError for the given kind.
func IsNotFoundKind(err error, kind string) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}
