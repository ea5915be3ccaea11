package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"book-manager/catalog"
)

// runDashboard is the interactive books view: a command loop over the
// authenticated user's list with add/edit/delete dialogs, search, and the
// profile screen.
func runDashboard(ctx context.Context, a *app) error {
	user, err := a.session.User()
	if errors.Is(err, catalog.ErrNoSession) {
		return errors.New("not logged in; run 'book-manager login' first")
	}
	if err != nil {
		return err
	}

	list := catalog.NewBookList(a.client)
	if err := list.Load(ctx); err != nil {
		if catalog.IsAuthError(err) {
			return describeAuthError(err)
		}
		fmt.Printf("Error loading books: %v\n", err)
	}

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Welcome back, %s!\n", user.Name)
	fmt.Println("Available commands:")
	fmt.Println("  Books: list, search, view, add, edit, delete")
	fmt.Println("  Account: profile, update profile, logout")
	fmt.Println("  System: refresh, exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return nil
		}
		cmd := strings.TrimSpace(scanner.Text())

		var err error
		switch cmd {
		case "list":
			err = handleList(ctx, list)
		case "search":
			handleSearch(scanner, list)
		case "view":
			handleView(scanner, list)
		case "add":
			err = handleAdd(ctx, scanner, list)
		case "edit":
			err = handleEdit(ctx, scanner, list)
		case "delete":
			err = handleDelete(ctx, scanner, list)
		case "refresh":
			err = handleRefresh(ctx, list)
		case "profile":
			err = showProfile(ctx, a)
		case "update profile":
			err = updateProfile(ctx, scanner, a)
		case "logout":
			if err := a.session.Clear(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Println("Logged out successfully!")
			return nil
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}

		if err != nil {
			if catalog.IsAuthError(err) {
				fmt.Println("Session expired. Please log in again with 'book-manager login'.")
				return nil
			}
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// handleList refetches and renders the table. A failed refetch keeps the
// previously loaded rows on screen under an inline error.
func handleList(ctx context.Context, list *catalog.BookList) error {
	if err := list.Load(ctx); err != nil {
		if catalog.IsAuthError(err) {
			return err
		}
		fmt.Printf("Error loading books: %v\n", err)
	}
	renderBooks(list.Rows())
	return nil
}

func handleRefresh(ctx context.Context, list *catalog.BookList) error {
	if err := list.Refresh(ctx); err != nil {
		if catalog.IsAuthError(err) {
			return err
		}
		fmt.Printf("Error loading books: %v\n", err)
	}
	renderBooks(list.Rows())
	return nil
}

// handleSearch filters the cached rows; it never refetches.
func handleSearch(sc *bufio.Scanner, list *catalog.BookList) {
	query, ok := promptLine(sc, "Query: ")
	if !ok {
		return
	}
	matches := list.Filter(query)
	if len(matches) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s) matching '%s':\n", len(matches), query)
	renderBooks(matches)
}

// handleView is the card view's detail dialog: search by title, then show
// one book in full.
func handleView(sc *bufio.Scanner, list *catalog.BookList) {
	query, ok := promptLine(sc, "Title: ")
	if !ok {
		return
	}
	matches := catalog.FilterBooksByTitle(list.Rows(), query)
	if len(matches) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	renderBooks(matches)
	book, ok := pickBook(sc, matches)
	if !ok {
		return
	}
	fmt.Printf("\n%s\n", book.Title)
	fmt.Println(strings.Repeat("-", len(book.Title)))
	fmt.Printf("Author: %s\n", book.Author)
	fmt.Printf("Genre: %s\n", book.Genre)
	fmt.Printf("Publication Date: %s\n", catalog.DateOnly(book.PublicationDate))
	fmt.Printf("Description: %s\n", book.Description)
}

func handleAdd(ctx context.Context, sc *bufio.Scanner, list *catalog.BookList) error {
	if err := ensureReady(ctx, list); err != nil {
		return err
	}
	if err := list.OpenAdd(); err != nil {
		return err
	}
	return runBookDialog(ctx, sc, list, list.SubmitAdd, "Book added successfully!", false)
}

func handleEdit(ctx context.Context, sc *bufio.Scanner, list *catalog.BookList) error {
	if err := ensureReady(ctx, list); err != nil {
		return err
	}
	renderBooks(list.Rows())
	book, ok := pickBook(sc, list.Rows())
	if !ok {
		return nil
	}
	if err := list.OpenEdit(book.ID); err != nil {
		return err
	}
	return runBookDialog(ctx, sc, list, list.SubmitEdit, "Book updated successfully!", true)
}

// runBookDialog collects the draft fields and submits. A failed save keeps
// the dialog open so the user can retry or cancel; success closes it and
// refetches the list.
func runBookDialog(ctx context.Context, sc *bufio.Scanner, list *catalog.BookList,
	submit func(context.Context) error, successMsg string, keepCurrent bool) error {
	for {
		err := promptForm(sc, list.Form(), []fieldPrompt{
			{name: "title", label: "Title", keepCurrent: keepCurrent},
			{name: "author", label: "Author", keepCurrent: keepCurrent},
			{name: "genre", label: "Genre", keepCurrent: keepCurrent},
			{name: "description", label: "Description", keepCurrent: keepCurrent},
			{name: "publicationDate", label: "Publication date (YYYY-MM-DD)", keepCurrent: keepCurrent},
		})
		if err != nil {
			list.Cancel()
			return err
		}

		err = submit(ctx)
		if err == nil {
			fmt.Println(successMsg)
			return handleList(ctx, list)
		}
		if catalog.IsAuthError(err) {
			list.Cancel()
			return err
		}
		fmt.Printf("Error: %v\n", err)
		if !promptYesNo(sc, "Try again?") {
			list.Cancel()
			fmt.Println("Cancelled.")
			return nil
		}
	}
}

func handleDelete(ctx context.Context, sc *bufio.Scanner, list *catalog.BookList) error {
	if err := ensureReady(ctx, list); err != nil {
		return err
	}
	renderBooks(list.Rows())
	book, ok := pickBook(sc, list.Rows())
	if !ok {
		return nil
	}
	if err := list.OpenDelete(book.ID); err != nil {
		return err
	}

	for {
		if !promptYesNo(sc, fmt.Sprintf("Delete '%s' by %s? This cannot be undone.", book.Title, book.Author)) {
			list.Cancel()
			fmt.Println("Delete cancelled.")
			return nil
		}
		err := list.ConfirmDelete(ctx)
		if err == nil {
			fmt.Println("Book deleted successfully!")
			return handleList(ctx, list)
		}
		if catalog.IsAuthError(err) {
			list.Cancel()
			return err
		}
		fmt.Printf("Error deleting book: %v\n", err)
		if !promptYesNo(sc, "Try again?") {
			list.Cancel()
			return nil
		}
	}
}

// ensureReady makes sure the list is loaded before a dialog opens.
func ensureReady(ctx context.Context, list *catalog.BookList) error {
	if list.Phase() == catalog.PhaseReady {
		return nil
	}
	return list.Load(ctx)
}

// pickBook asks for a row number from the rendered table.
func pickBook(sc *bufio.Scanner, books []catalog.Book) (catalog.Book, bool) {
	if len(books) == 0 {
		return catalog.Book{}, false
	}
	answer, ok := promptLine(sc, "Book #: ")
	if !ok {
		return catalog.Book{}, false
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(books) {
		fmt.Printf("Invalid book number: %s\n", answer)
		return catalog.Book{}, false
	}
	return books[n-1], true
}

func renderBooks(books []catalog.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}

	fmt.Printf("%-4s %-28s %-20s %-14s %-12s %s\n", "#", "Title", "Author", "Genre", "Published", "Description")
	fmt.Println(strings.Repeat("-", 112))

	for i, b := range books {
		fmt.Printf("%-4d %-28s %-20s %-14s %-12s %s\n",
			i+1,
			truncateString(b.Title, 28),
			truncateString(b.Author, 20),
			truncateString(b.Genre, 14),
			catalog.DateOnly(b.PublicationDate),
			truncateString(b.Description, 32))
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
