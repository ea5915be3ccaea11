package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Phase is the fetch state of the book list.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseListing
	PhaseReady
	PhaseError
)

// Modal identifies which dialog, if any, is layered over the list.
type Modal int

const (
	ModalNone Modal = iota
	ModalAdd
	ModalEdit
	ModalDelete
)

// BookList drives the my-books table: the fetch lifecycle, the add/edit/
// delete dialog flows, and the presentational search filter. Dialogs only
// open from a ready list, a dialog's draft is a copy that survives list
// refetches, and a pending save blocks a second submit for the same dialog.
type BookList struct {
	client *Client
	books  *Resource[[]Book]

	phase    Phase
	modal    Modal
	form     *Form
	editID   string
	deleteID string
	modalErr error

	mu      sync.Mutex
	pending bool
}

// NewBookList creates the view controller backed by the "books" resource.
func NewBookList(client *Client) *BookList {
	return &BookList{
		client: client,
		books:  NewResource("books", client.ListMyBooks),
	}
}

// Phase returns the current fetch state.
func (l *BookList) Phase() Phase { return l.phase }

// Modal returns the currently open dialog, if any.
func (l *BookList) Modal() Modal { return l.modal }

// Form exposes the open dialog's draft.
func (l *BookList) Form() *Form { return l.form }

// ModalError returns the last mutation failure surfaced in the open dialog.
func (l *BookList) ModalError() error { return l.modalErr }

// Pending reports whether a save is in flight; the submit action is disabled
// while it is.
func (l *BookList) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Load fetches (or refetches) the list. On failure any previously loaded
// rows are retained and the view reports PhaseError so it can render an
// inline error without blanking the table.
func (l *BookList) Load(ctx context.Context) error {
	l.phase = PhaseListing
	res := l.books.Get(ctx)
	if res.Err != nil {
		l.phase = PhaseError
		return res.Err
	}
	l.phase = PhaseReady
	return nil
}

// Refresh marks the list stale and refetches it.
func (l *BookList) Refresh(ctx context.Context) error {
	l.books.Invalidate()
	return l.Load(ctx)
}

// Rows returns the last successfully fetched books; they survive later fetch
// failures.
func (l *BookList) Rows() []Book {
	return l.books.Snapshot().Data
}

// Filter returns the rows whose title, author or genre contain the term,
// case-insensitively. Filtering is purely presentational: it never mutates
// the cache and never triggers a refetch.
func (l *BookList) Filter(term string) []Book {
	return FilterBooks(l.Rows(), term)
}

// FilterBooks is the table view's search: substring match over title, author
// and genre.
func FilterBooks(books []Book, term string) []Book {
	if term == "" {
		return books
	}
	term = strings.ToLower(term)
	var out []Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), term) ||
			strings.Contains(strings.ToLower(b.Author), term) ||
			strings.Contains(strings.ToLower(b.Genre), term) {
			out = append(out, b)
		}
	}
	return out
}

// FilterBooksByTitle is the card view's search: title only.
func FilterBooksByTitle(books []Book, term string) []Book {
	if term == "" {
		return books
	}
	term = strings.ToLower(term)
	var out []Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), term) {
			out = append(out, b)
		}
	}
	return out
}

// Find returns the cached book with the given id.
func (l *BookList) Find(id string) (Book, bool) {
	for _, b := range l.Rows() {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// OpenAdd opens the add dialog with a blank draft.
func (l *BookList) OpenAdd() error {
	if err := l.openModal(ModalAdd); err != nil {
		return err
	}
	l.form = BookForm()
	return nil
}

// OpenEdit opens the edit dialog seeded from the selected book. The
// identifier is carried on the view, never as an editable field, and the
// draft is a copy: a list refetch while the dialog is open leaves it alone.
func (l *BookList) OpenEdit(id string) error {
	book, ok := l.Find(id)
	if !ok {
		return fmt.Errorf("book %q is not in the list", id)
	}
	if err := l.openModal(ModalEdit); err != nil {
		return err
	}
	l.editID = id
	l.form = BookForm()
	l.form.Reset(map[string]string{
		"title":           book.Title,
		"author":          book.Author,
		"genre":           book.Genre,
		"description":     book.Description,
		"publicationDate": DateOnly(book.PublicationDate),
	})
	return nil
}

// OpenDelete opens the delete confirmation for the given id. Existence is
// the backend's call: confirming a vanished id surfaces its HTTPError.
func (l *BookList) OpenDelete(id string) error {
	if err := l.openModal(ModalDelete); err != nil {
		return err
	}
	l.deleteID = id
	return nil
}

func (l *BookList) openModal(m Modal) error {
	if l.phase != PhaseReady {
		return fmt.Errorf("book list is not ready")
	}
	if l.modal != ModalNone {
		return fmt.Errorf("a dialog is already open")
	}
	l.modal = m
	l.modalErr = nil
	return nil
}

// Cancel closes any open dialog and discards its draft. The list is left
// untouched.
func (l *BookList) Cancel() {
	l.modal = ModalNone
	l.form = nil
	l.editID = ""
	l.deleteID = ""
	l.modalErr = nil
}

// SubmitAdd validates the draft and creates the book. Success closes the
// dialog, invalidates the list and drops the view back to listing; failure
// keeps the dialog open with the error surfaced so the user can retry or
// cancel.
func (l *BookList) SubmitAdd(ctx context.Context) error {
	if l.modal != ModalAdd {
		return fmt.Errorf("add dialog is not open")
	}
	return l.submit(ctx, func(ctx context.Context, draft Book) error {
		_, err := l.client.CreateBook(ctx, draft)
		return err
	})
}

// SubmitEdit validates the draft and saves it over the selected book.
func (l *BookList) SubmitEdit(ctx context.Context) error {
	if l.modal != ModalEdit {
		return fmt.Errorf("edit dialog is not open")
	}
	id := l.editID
	return l.submit(ctx, func(ctx context.Context, draft Book) error {
		_, err := l.client.UpdateBook(ctx, id, draft)
		return err
	})
}

func (l *BookList) submit(ctx context.Context, save func(context.Context, Book) error) error {
	if err := l.begin(); err != nil {
		return err
	}
	defer l.finish()

	err := l.form.Submit(func(values map[string]string) error {
		return Mutate(ctx, func(ctx context.Context) error {
			return save(ctx, bookFromValues(values))
		}, l.books)
	})
	if err != nil {
		l.modalErr = err
		return err
	}
	l.Cancel()
	l.phase = PhaseListing
	return nil
}

// ConfirmDelete performs the pending deletion. Success closes the dialog and
// invalidates the list; failure keeps the dialog open with the error
// surfaced.
func (l *BookList) ConfirmDelete(ctx context.Context) error {
	if l.modal != ModalDelete {
		return fmt.Errorf("delete dialog is not open")
	}
	if err := l.begin(); err != nil {
		return err
	}
	defer l.finish()

	id := l.deleteID
	err := Mutate(ctx, func(ctx context.Context) error {
		return l.client.DeleteBook(ctx, id)
	}, l.books)
	if err != nil {
		l.modalErr = err
		return err
	}
	l.Cancel()
	l.phase = PhaseListing
	return nil
}

func (l *BookList) begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending {
		return ErrMutationPending
	}
	l.pending = true
	return nil
}

func (l *BookList) finish() {
	l.mu.Lock()
	l.pending = false
	l.mu.Unlock()
}

func bookFromValues(values map[string]string) Book {
	return Book{
		Title:           values["title"],
		Author:          values["author"],
		Genre:           values["genre"],
		Description:     values["description"],
		PublicationDate: values["publicationDate"],
	}
}
