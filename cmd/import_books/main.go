// Command import_books bulk-loads book drafts from a JSON file into the
// authenticated user's library through the BookManager API. Run
// 'book-manager login' first; the stored session is reused.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"book-manager/catalog"
)

func main() {
	file := flag.String("file", "books.json", "JSON file holding an array of book drafts")
	server := flag.String("server", "", "server base URL (env BOOK_MANAGER_SERVER)")
	dataDir := flag.String("data-dir", "", "directory holding the session database (env BOOK_MANAGER_DATA_DIR)")
	flag.Parse()

	if err := run(*file, *server, *dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file, server, dataDir string) error {
	if server == "" {
		server = os.Getenv("BOOK_MANAGER_SERVER")
	}
	if server == "" {
		server = "http://localhost:5000"
	}
	if dataDir == "" {
		dataDir = os.Getenv("BOOK_MANAGER_DATA_DIR")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".book-manager")
	}

	raw, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return fmt.Errorf("read drafts: %w", err)
	}
	var drafts []catalog.Book
	if err := json.Unmarshal(raw, &drafts); err != nil {
		return fmt.Errorf("decode drafts: %w", err)
	}

	session, err := catalog.OpenSessionStore(filepath.Join(dataDir, "session.db"))
	if err != nil {
		return err
	}
	defer session.Close()

	if _, err := session.Token(); err != nil {
		return fmt.Errorf("not logged in; run 'book-manager login' first")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := catalog.NewClient(server, session, logger)
	ctx := context.Background()

	fmt.Printf("Importing %d book(s) from %s...\n", len(drafts), file)

	successCount := 0
	errorCount := 0

	for _, draft := range drafts {
		fmt.Printf("Importing: %s by %s... ", draft.Title, draft.Author)

		// Run the draft through the same rules the add dialog enforces.
		form := catalog.BookForm()
		form.Reset(map[string]string{
			"title":           draft.Title,
			"author":          draft.Author,
			"genre":           draft.Genre,
			"description":     draft.Description,
			"publicationDate": catalog.DateOnly(draft.PublicationDate),
		})
		if !form.Valid() {
			fmt.Println("SKIPPED - draft fails validation")
			errorCount++
			continue
		}

		created, err := client.CreateBook(ctx, catalog.Book{
			Title:           draft.Title,
			Author:          draft.Author,
			Genre:           draft.Genre,
			Description:     draft.Description,
			PublicationDate: draft.PublicationDate,
		})
		if err != nil {
			if catalog.IsAuthError(err) {
				return fmt.Errorf("session expired, please log in again")
			}
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}

		fmt.Printf("SUCCESS (ID: %s)\n", created.ID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		books, err := client.ListMyBooks(ctx)
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return nil
		}
		fmt.Println("\nYour library now holds:")
		fmt.Printf("%-50s %-30s\n", "Title", "Author")
		fmt.Println(strings.Repeat("-", 85))
		for _, book := range books {
			fmt.Printf("%-50s %-30s\n", truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
