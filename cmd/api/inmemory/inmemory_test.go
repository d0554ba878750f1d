package inmemory_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/bookshelf-api/cmd/api/book"
	"github.com/bookshelf-api/cmd/api/inmemory"
	"github.com/matryer/is"
)

var ctx context.Context = context.Background()

func newBook(id, name string) book.Book {
	return book.Book{
		ID:         id,
		Name:       name,
		Year:       2010,
		Author:     "John Doe",
		Summary:    "Lorem ipsum dolor sit amet",
		Publisher:  "Dicoding Indonesia",
		PageCount:  100,
		ReadPage:   25,
		Finished:   false,
		Reading:    false,
		InsertedAt: time.Now().UTC().Round(time.Millisecond),
		UpdatedAt:  time.Now().UTC().Round(time.Millisecond),
	}
}

func TestCreateBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("creates a book without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("aaaaaaaaaaaaaaa1", "A new book")

		created, err := store.CreateBook(ctx, b)
		is.NoErr(err)
		compareBooks(is, created, b)
	})

	t.Run("created book can be fetched by its ID", func(t *testing.T) {
		is := is.New(t)

		b := newBook("aaaaaaaaaaaaaaa2", "Another new book")

		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		fetchedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		compareBooks(is, fetchedBook, b)
	})
}

func TestGetBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("Gets a book by ID without errors", func(t *testing.T) {
		is := is.New(t)

		// Setting up, creating a book to be fetched.
		b := newBook("bbbbbbbbbbbbbbb1", "A book to be fetched")
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		fetchedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		compareBooks(is, fetchedBook, b)
	})

	t.Run("Gets a non existing book should return a not found error", func(t *testing.T) {
		is := is.New(t)

		fetchedBook, err := store.GetBookByID(ctx, "does-not-exist")
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		compareBooks(is, fetchedBook, book.Book{})
	})
}

func TestUpdateBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("updates a book without errors", func(t *testing.T) {
		is := is.New(t)

		// Setting up, creating a book to be updated.
		b := newBook("ccccccccccccccc1", "A new book to be updated")
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		//Updating the created book, with a different insertion time that must be ignored.
		upd := b
		upd.Name = "The book is now updated"
		upd.PageCount = 50
		upd.ReadPage = 50
		upd.Finished = true
		upd.Reading = true
		upd.InsertedAt = time.Time{}
		upd.UpdatedAt = b.UpdatedAt.Add(time.Second)

		updatedBook, err := store.UpdateBook(ctx, upd)
		is.NoErr(err)

		upd.InsertedAt = b.InsertedAt
		compareBooks(is, updatedBook, upd)

		fetchedBook, err := store.GetBookByID(ctx, b.ID)
		is.NoErr(err)
		compareBooks(is, fetchedBook, upd)
	})

	t.Run("Updates an non existing book should return a not found error", func(t *testing.T) {
		is := is.New(t)

		nonexistentBook := newBook("ccccccccccccccc2", "A new book that will not be stored")

		returnedBook, err := store.UpdateBook(ctx, nonexistentBook)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
		compareBooks(is, returnedBook, book.Book{})

		_, err = store.GetBookByID(ctx, nonexistentBook.ID)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})
}

func TestDeleteBook(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	t.Run("deletes a book without errors", func(t *testing.T) {
		is := is.New(t)

		b := newBook("ddddddddddddddd1", "A book to be deleted")
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		err = store.DeleteBook(ctx, b.ID)
		is.NoErr(err)

		_, err = store.GetBookByID(ctx, b.ID)
		is.True(errors.Is(err, book.ErrResponseBookNotFound))
	})

	t.Run("deletes a non existing book should return a not found error and keep the shelf", func(t *testing.T) {
		is := is.New(t)

		b := newBook("ddddddddddddddd2", "A book that stays")
		_, err := store.CreateBook(ctx, b)
		is.NoErr(err)

		err = store.DeleteBook(ctx, "does-not-exist")
		is.True(errors.Is(err, book.ErrResponseBookNotFound))

		books, err := store.ListBooks(ctx, book.ListBooksRequest{})
		is.NoErr(err)
		is.Equal(len(books), 1)
		is.Equal(books[0].ID, b.ID)
	})
}

func TestListBooks(t *testing.T) {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		log.Fatalln(err)
	}

	// Setting up, creating books to be listed. More than ten, so lexical and numeric order would differ without padding.
	listSize := 12
	var ids []string
	for i := 0; i < listSize; i++ {
		b := newBook(fmt.Sprintf("list%012d", listSize-i), fmt.Sprintf("Book number %02d", i))
		b.Reading = i%2 == 0
		b.Finished = i%3 == 0
		_, err := store.CreateBook(ctx, b)
		if err != nil {
			log.Fatalln(err)
		}
		ids = append(ids, b.ID)
	}

	t.Run("lists every book in insertion order", func(t *testing.T) {
		is := is.New(t)

		books, err := store.ListBooks(ctx, book.ListBooksRequest{})
		is.NoErr(err)
		is.Equal(len(books), listSize)
		for i, b := range books {
			is.Equal(b.ID, ids[i])
		}
	})

	t.Run("filters by reading keeping the relative order", func(t *testing.T) {
		is := is.New(t)
		reading := true

		books, err := store.ListBooks(ctx, book.ListBooksRequest{Reading: &reading})
		is.NoErr(err)
		is.Equal(len(books), listSize/2)
		for i, b := range books {
			is.True(b.Reading)
			is.Equal(b.ID, ids[i*2])
		}
	})

	t.Run("filters by name and finished together", func(t *testing.T) {
		is := is.New(t)
		finished := true

		books, err := store.ListBooks(ctx, book.ListBooksRequest{Name: "NUMBER 0", Finished: &finished})
		is.NoErr(err)
		is.Equal(len(books), 4) // 00, 03, 06, 09
		for _, b := range books {
			is.True(b.Finished)
		}
	})

	t.Run("keeps the order after a deletion in the middle", func(t *testing.T) {
		is := is.New(t)

		err := store.DeleteBook(ctx, ids[5])
		is.NoErr(err)

		books, err := store.ListBooks(ctx, book.ListBooksRequest{})
		is.NoErr(err)
		is.Equal(len(books), listSize-1)
		expected := append(append([]string{}, ids[:5]...), ids[6:]...)
		for i, b := range books {
			is.Equal(b.ID, expected[i])
		}
	})

	t.Run("an update does not move the book", func(t *testing.T) {
		is := is.New(t)

		b, err := store.GetBookByID(ctx, ids[0])
		is.NoErr(err)
		b.Name = "Renamed"
		_, err = store.UpdateBook(ctx, b)
		is.NoErr(err)

		books, err := store.ListBooks(ctx, book.ListBooksRequest{})
		is.NoErr(err)
		is.Equal(books[0].ID, ids[0])
		is.Equal(books[0].Name, "Renamed")
	})
}

func TestConcurrentCreateBook(t *testing.T) {
	is := is.New(t)
	store, err := inmemory.NewInMemoryStore()
	is.NoErr(err)

	workers := 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.CreateBook(ctx, newBook(fmt.Sprintf("conc%012d", i), "Concurrent book"))
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	books, err := store.ListBooks(ctx, book.ListBooksRequest{})
	is.NoErr(err)
	is.Equal(len(books), workers)
}

// compareBooks asserts that two books are equal,
// handling time.Time values correctly.
func compareBooks(is *is.I, a, b book.Book) {
	is.Helper()

	// Make sure we have the correct timestamps.
	is.True(a.InsertedAt.Equal(b.InsertedAt))
	is.True(a.UpdatedAt.Equal(b.UpdatedAt))

	// Overwrite to be able to compare them.
	b.InsertedAt = a.InsertedAt
	b.UpdatedAt = a.UpdatedAt

	// Assert that they are equal.
	is.Equal(a, b)
}
