package inmemory

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bookshelf-api/cmd/api/book"
	"github.com/hashicorp/go-memdb"
)

const bookTable = "book"

type InMemoryStore struct {
	db *memdb.MemDB

	// Next insertion position. Only touched inside write transactions, which memdb serializes.
	next uint64
}

func NewInMemoryStore() (*InMemoryStore, error) {
	// Define the schema
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			bookTable: {
				Name: bookTable,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"position": { // Zero padded, so the lexical order of the index is the insertion order.
						Name:    "position",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Position"},
					},
				},
			},
		},
	}

	errV := schema.Validate()
	if errV != nil {
		log.Println("schema validating error: ", errV)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &InMemoryStore{db: db}, nil
}

type storedBook struct {
	Position   string
	ID         string
	Name       string
	Year       int
	Author     string
	Summary    string
	Publisher  string
	PageCount  int
	ReadPage   int
	Finished   bool
	Reading    bool
	InsertedAt time.Time
	UpdatedAt  time.Time
}

func toStoredBook(position string, b book.Book) storedBook {
	return storedBook{
		Position:   position,
		ID:         b.ID,
		Name:       b.Name,
		Year:       b.Year,
		Author:     b.Author,
		Summary:    b.Summary,
		Publisher:  b.Publisher,
		PageCount:  b.PageCount,
		ReadPage:   b.ReadPage,
		Finished:   b.Finished,
		Reading:    b.Reading,
		InsertedAt: b.InsertedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (sb storedBook) toBook() book.Book {
	return book.Book{
		ID:         sb.ID,
		Name:       sb.Name,
		Year:       sb.Year,
		Author:     sb.Author,
		Summary:    sb.Summary,
		Publisher:  sb.Publisher,
		PageCount:  sb.PageCount,
		ReadPage:   sb.ReadPage,
		Finished:   sb.Finished,
		Reading:    sb.Reading,
		InsertedAt: sb.InsertedAt,
		UpdatedAt:  sb.UpdatedAt,
	}
}

/* Appends the book at the end of the shelf and reads it back before committing. */
func (store *InMemoryStore) CreateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	position := fmt.Sprintf("%020d", store.next)
	if err := txn.Insert(bookTable, toStoredBook(position, bookEntry)); err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}

	raw, err := txn.First(bookTable, "id", bookEntry.ID)
	if err != nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("storing book on db: %w", book.ErrResponseBookNotStored)
	}

	store.next++
	txn.Commit()
	return raw.(storedBook).toBook(), nil
}

func (store *InMemoryStore) GetBookByID(ctx context.Context, id string) (book.Book, error) {
	txn := store.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(bookTable, "id", id)
	if err != nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("searching by ID: %w", book.ErrResponseBookNotFound)
	}

	return raw.(storedBook).toBook(), nil
}

/* Scans the shelf in insertion order and keeps the books matching the request. */
func (store *InMemoryStore) ListBooks(ctx context.Context, req book.ListBooksRequest) ([]book.Book, error) {
	txn := store.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(bookTable, "position")
	if err != nil {
		return []book.Book{}, fmt.Errorf("listing books from db: %w", err)
	}

	books := []book.Book{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		b := obj.(storedBook).toBook()
		if !req.Matches(b) {
			continue
		}
		books = append(books, b)
	}

	return books, nil
}

func (store *InMemoryStore) UpdateBook(ctx context.Context, bookEntry book.Book) (book.Book, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(bookTable, "id", bookEntry.ID)
	if err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}
	if raw == nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", book.ErrResponseBookNotFound)
	}

	current := raw.(storedBook)
	bookEntry.InsertedAt = current.InsertedAt //InsertedAt never changes.
	updated := toStoredBook(current.Position, bookEntry)

	if err := txn.Insert(bookTable, updated); err != nil {
		return book.Book{}, fmt.Errorf("updating book on db: %w", err)
	}

	txn.Commit()
	return updated.toBook(), nil
}

func (store *InMemoryStore) DeleteBook(ctx context.Context, id string) error {
	txn := store.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(bookTable, "id", id)
	if err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("deleting book from db: %w", book.ErrResponseBookNotFound)
	}

	if err := txn.Delete(bookTable, raw); err != nil {
		return fmt.Errorf("deleting book from db: %w", err)
	}

	txn.Commit()
	return nil
}
