// internal/console/handler.go
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"citylibrary/internal/catalog"
)

const (
	choiceAddBook = iota + 1
	choiceAddMember
	choiceIssueBook
	choiceReturnBook
	choiceSearchBooks
	choiceSortBooks
	choiceExit
)

var errInvalidNumber = errors.New("invalid number")

// Handler drives the catalog from a line-oriented text menu.
type Handler struct {
	service catalog.Service
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
}

func NewHandler(service catalog.Service, in io.Reader, out io.Writer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
	}
}

// Run shows the menu until the user exits or input ends. Both paths save
// the catalog before returning.
func (h *Handler) Run(ctx context.Context) error {
	for {
		h.printMenu()

		choice, err := h.readInt("Enter choice: ")
		switch {
		case errors.Is(err, io.EOF):
			return h.handleExit(ctx)
		case errors.Is(err, errInvalidNumber):
			h.println("Invalid number!")
			continue
		case err != nil:
			return h.abort(ctx, err)
		}

		requestID := uuid.New().String()
		h.logger.DebugContext(ctx, "menu command", "request_id", requestID, "choice", choice)

		if choice == choiceExit {
			return h.handleExit(ctx)
		}

		err = h.dispatch(ctx, choice)
		switch {
		case errors.Is(err, io.EOF):
			return h.handleExit(ctx)
		case errors.Is(err, errInvalidNumber):
			h.println("Invalid number!")
		case err != nil:
			return h.abort(ctx, err)
		}
		h.logger.DebugContext(ctx, "menu command done", "request_id", requestID)
	}
}

func (h *Handler) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceAddBook:
		return h.handleAddBook(ctx)
	case choiceAddMember:
		return h.handleAddMember(ctx)
	case choiceIssueBook:
		return h.handleIssueBook(ctx)
	case choiceReturnBook:
		return h.handleReturnBook(ctx)
	case choiceSearchBooks:
		return h.handleSearchBooks(ctx)
	case choiceSortBooks:
		return h.handleSortBooks(ctx)
	default:
		h.println("Invalid choice!")
		return nil
	}
}

func (h *Handler) printMenu() {
	h.println("")
	h.println("=== City Library Digital Management System ===")
	h.println("1. Add Book")
	h.println("2. Add Member")
	h.println("3. Issue Book")
	h.println("4. Return Book")
	h.println("5. Search Books")
	h.println("6. Sort Books")
	h.println("7. Exit")
}

func (h *Handler) handleAddBook(ctx context.Context) error {
	id, err := h.readInt("Enter Book ID: ")
	if err != nil {
		return err
	}
	title, err := h.readLine("Enter Title: ")
	if err != nil {
		return err
	}
	author, err := h.readLine("Enter Author: ")
	if err != nil {
		return err
	}
	category, err := h.readLine("Enter Category: ")
	if err != nil {
		return err
	}

	_, err = h.service.AddBook(ctx, id, title, author, category)
	h.reportSave(err)
	h.println("Book added successfully!")
	return nil
}

func (h *Handler) handleAddMember(ctx context.Context) error {
	id, err := h.readInt("Enter Member ID: ")
	if err != nil {
		return err
	}
	name, err := h.readLine("Enter Name: ")
	if err != nil {
		return err
	}
	email, err := h.readLine("Enter Email: ")
	if err != nil {
		return err
	}

	_, err = h.service.AddMember(ctx, id, name, email)
	h.reportSave(err)
	h.println("Member added successfully!")
	return nil
}

func (h *Handler) handleIssueBook(ctx context.Context) error {
	memberID, err := h.readInt("Enter Member ID: ")
	if err != nil {
		return err
	}
	bookID, err := h.readInt("Enter Book ID: ")
	if err != nil {
		return err
	}

	err = h.service.IssueBook(ctx, memberID, bookID)
	switch {
	case catalog.IsNotFoundKind(err, catalog.KindBook):
		h.println("Book not found!")
	case catalog.IsNotFoundKind(err, catalog.KindMember):
		h.println("Member not found!")
	case errors.Is(err, catalog.ErrAlreadyIssued):
		h.println("Book already issued!")
	default:
		h.reportSave(err)
		h.println("Book issued successfully!")
	}
	return nil
}

func (h *Handler) handleReturnBook(ctx context.Context) error {
	bookID, err := h.readInt("Enter Book ID: ")
	if err != nil {
		return err
	}

	err = h.service.ReturnBook(ctx, bookID)
	if errors.Is(err, catalog.ErrNotFound) {
		h.println("Book not found!")
		return nil
	}
	h.reportSave(err)
	h.println("Book returned successfully!")
	return nil
}

func (h *Handler) handleSearchBooks(ctx context.Context) error {
	keyword, err := h.readLine("Enter keyword to search: ")
	if err != nil {
		return err
	}
	for _, b := range h.service.SearchBooks(ctx, keyword) {
		h.printBook(b)
	}
	return nil
}

func (h *Handler) handleSortBooks(ctx context.Context) error {
	h.println("1. Sort by Title")
	h.println("2. Sort by Author")
	n, err := h.readInt("")
	if err != nil {
		return err
	}

	var by catalog.SortCriterion
	switch n {
	case 1:
		by = catalog.SortByTitle
	case 2:
		by = catalog.SortByAuthor
	}
	for _, b := range h.service.SortBooks(ctx, by) {
		h.printBook(b)
	}
	return nil
}

func (h *Handler) handleExit(ctx context.Context) error {
	h.reportSave(h.service.Save(ctx))
	h.println("Exiting...")
	return nil
}

// abort saves before giving up on unreadable input.
func (h *Handler) abort(ctx context.Context, err error) error {
	h.logger.WarnContext(ctx, "input unreadable, exiting", "error", err)
	_ = h.handleExit(ctx)
	return err
}

func (h *Handler) printBook(b *catalog.Book) {
	issued := "No"
	if b.Issued {
		issued = "Yes"
	}
	fmt.Fprintf(h.out, "Book ID: %d\nTitle: %s\nAuthor: %s\nCategory: %s\nIssued: %s\n",
		b.ID, b.Title, b.Author, b.Category, issued)
}

// ReportLoad names each catalog file that could not be read completely.
func (h *Handler) ReportLoad(err error) {
	if errors.Is(err, catalog.ErrLoadBooks) {
		h.println("Error loading books.")
	}
	if errors.Is(err, catalog.ErrLoadMembers) {
		h.println("Error loading members.")
	}
}

// reportSave tells the user a save failed. The change itself stays applied.
func (h *Handler) reportSave(err error) {
	if errors.Is(err, catalog.ErrPersist) {
		h.println("Error saving catalog!")
	}
}

func (h *Handler) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(h.out, prompt)
	}
	line, err := h.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (h *Handler) readInt(prompt string) (int, error) {
	line, err := h.readLine(prompt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidNumber, line)
	}
	return n, nil
}

func (h *Handler) println(s string) {
	fmt.Fprintln(h.out, s)
}
