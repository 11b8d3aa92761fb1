// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "citylibrary/catalog"

// service implements the Service interface.
type service struct {
	books   map[int]*Book
	members map[int]*Member

	store      Store
	logger     *slog.Logger
	tracer     trace.Tracer
	operations metric.Int64Counter
}

// Option configures a catalog service.
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// NewService creates a new catalog service instance backed by store.
func NewService(store Store, logger *slog.Logger, opts ...Option) Service {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var operations metric.Int64Counter = noop.Int64Counter{}
	counter, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"library.operations",
		metric.WithDescription("Catalog operations by name and outcome"),
	)
	if err != nil {
		otel.Handle(err)
	} else {
		operations = counter
	}

	return &service{
		books:      make(map[int]*Book),
		members:    make(map[int]*Member),
		store:      store,
		logger:     logger,
		tracer:     o.tracerProvider.Tracer(instrumentationName),
		operations: operations,
	}
}

// Load merges the persisted books and members into memory. Records read
// before a failure are kept; the failure is logged and returned.
func (s *service) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "catalog.load")
	defer span.End()

	books, members, err := s.store.Load(ctx)
	for _, b := range books {
		s.books[b.ID] = b
	}
	for _, m := range members {
		s.members[m.ID] = m
	}

	span.SetAttributes(
		attribute.Int("books.loaded", len(books)),
		attribute.Int("members.loaded", len(members)),
	)
	s.record(ctx, "load", err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "partial load")
		s.logger.WarnContext(ctx, "catalog loaded partially",
			"books", len(books), "members", len(members), "error", err)
		return fmt.Errorf("load catalog: %w", err)
	}
	return nil
}

// Save rewrites both collections through the store.
func (s *service) Save(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "catalog.save")
	defer span.End()

	err := s.store.Save(ctx, s.sortedBooks(), s.sortedMembers())
	s.record(ctx, "save", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		s.logger.WarnContext(ctx, "catalog save failed", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// AddBook inserts or replaces the book with the given id. A replaced book
// loses its issued state; member lists are left untouched.
func (s *service) AddBook(ctx context.Context, id int, title, author, category string) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.add_book",
		trace.WithAttributes(attribute.Int("book.id", id)),
	)
	defer span.End()

	if _, exists := s.books[id]; exists {
		span.SetAttributes(attribute.Bool("book.replaced", true))
		s.logger.DebugContext(ctx, "replacing existing book", "book_id", id)
	}

	book := &Book{
		ID:       id,
		Title:    title,
		Author:   author,
		Category: category,
	}
	s.books[id] = book
	s.record(ctx, "add_book", nil)

	return book.clone(), s.Save(ctx)
}

// AddMember inserts or replaces the member with the given id, starting with
// an empty issued list.
func (s *service) AddMember(ctx context.Context, id int, name, email string) (*Member, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.add_member",
		trace.WithAttributes(attribute.Int("member.id", id)),
	)
	defer span.End()

	if _, exists := s.members[id]; exists {
		span.SetAttributes(attribute.Bool("member.replaced", true))
		s.logger.DebugContext(ctx, "replacing existing member", "member_id", id)
	}

	member := &Member{
		ID:    id,
		Name:  name,
		Email: email,
	}
	s.members[id] = member
	s.record(ctx, "add_member", nil)

	return member.clone(), s.Save(ctx)
}

// IssueBook checks the book exists, the member exists and the book is not
// already issued, in that order, before lending it out.
func (s *service) IssueBook(ctx context.Context, memberID, bookID int) error {
	ctx, span := s.tracer.Start(ctx, "catalog.issue_book",
		trace.WithAttributes(
			attribute.Int("member.id", memberID),
			attribute.Int("book.id", bookID),
		),
	)
	defer span.End()

	book, ok := s.books[bookID]
	if !ok {
		return s.reject(ctx, span, "issue_book", bookNotFound(bookID))
	}
	member, ok := s.members[memberID]
	if !ok {
		return s.reject(ctx, span, "issue_book", memberNotFound(memberID))
	}
	if book.Issued {
		return s.reject(ctx, span, "issue_book", fmt.Errorf("book %d: %w", bookID, ErrAlreadyIssued))
	}

	book.Issued = true
	member.addIssuedBook(bookID)
	s.record(ctx, "issue_book", nil)

	return s.Save(ctx)
}

// ReturnBook marks the book available and removes it from every member
// holding it. Returning a book that was never issued succeeds.
func (s *service) ReturnBook(ctx context.Context, bookID int) error {
	ctx, span := s.tracer.Start(ctx, "catalog.return_book",
		trace.WithAttributes(attribute.Int("book.id", bookID)),
	)
	defer span.End()

	book, ok := s.books[bookID]
	if !ok {
		return s.reject(ctx, span, "return_book", bookNotFound(bookID))
	}

	book.Issued = false
	holders := 0
	for _, m := range s.members {
		before := len(m.IssuedBooks)
		m.removeIssuedBook(bookID)
		if len(m.IssuedBooks) != before {
			holders++
		}
	}
	span.SetAttributes(attribute.Int("holders.cleared", holders))
	s.record(ctx, "return_book", nil)

	return s.Save(ctx)
}

// SearchBooks returns books whose title, author or category contains the
// keyword, ignoring case. An empty keyword matches every book.
func (s *service) SearchBooks(ctx context.Context, keyword string) []*Book {
	_, span := s.tracer.Start(ctx, "catalog.search_books")
	defer span.End()

	key := strings.ToLower(keyword)
	var result []*Book
	for _, b := range s.sortedBooks() {
		if strings.Contains(strings.ToLower(b.Title), key) ||
			strings.Contains(strings.ToLower(b.Author), key) ||
			strings.Contains(strings.ToLower(b.Category), key) {
			result = append(result, b)
		}
	}

	span.SetAttributes(attribute.Int("books.matched", len(result)))
	s.record(ctx, "search_books", nil)
	return result
}

// SortBooks returns every book ordered by the criterion. Unknown criteria
// leave the books in id order.
func (s *service) SortBooks(ctx context.Context, by SortCriterion) []*Book {
	_, span := s.tracer.Start(ctx, "catalog.sort_books",
		trace.WithAttributes(attribute.String("sort.by", string(by))),
	)
	defer span.End()

	books := s.sortedBooks()
	switch by {
	case SortByTitle:
		slices.SortStableFunc(books, func(a, b *Book) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	case SortByAuthor:
		slices.SortStableFunc(books, func(a, b *Book) int {
			return strings.Compare(strings.ToLower(a.Author), strings.ToLower(b.Author))
		})
	}

	s.record(ctx, "sort_books", nil)
	return books
}

// GetBook returns a copy of the book with the given id.
func (s *service) GetBook(ctx context.Context, id int) (*Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, bookNotFound(id)
	}
	return b.clone(), nil
}

// GetMember returns a copy of the member with the given id.
func (s *service) GetMember(ctx context.Context, id int) (*Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, memberNotFound(id)
	}
	return m.clone(), nil
}

// sortedBooks returns copies of all books in ascending id order.
func (s *service) sortedBooks() []*Book {
	books := make([]*Book, 0, len(s.books))
	for _, id := range slices.Sorted(maps.Keys(s.books)) {
		books = append(books, s.books[id].clone())
	}
	return books
}

// sortedMembers returns copies of all members in ascending id order.
func (s *service) sortedMembers() []*Member {
	members := make([]*Member, 0, len(s.members))
	for _, id := range slices.Sorted(maps.Keys(s.members)) {
		members = append(members, s.members[id].clone())
	}
	return members
}

func (s *service) reject(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.record(ctx, op, err)
	return err
}

func (s *service) record(ctx context.Context, op string, err error) {
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome(err)),
	))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyIssued):
		return "already_issued"
	default:
		return "io_failure"
	}
}
