package book

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VictoriaMetrics/metrics"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

const idLength = 16

var (
	booksAdded   = metrics.NewCounter("bookshelf_books_added_total")
	booksUpdated = metrics.NewCounter("bookshelf_books_updated_total")
	booksDeleted = metrics.NewCounter("bookshelf_books_deleted_total")
)

type ServiceAPI interface {
	AddBook(ctx context.Context, req BookPayload) (Book, error)
	ListBooks(ctx context.Context, req ListBooksRequest) ([]Summary, error)
	GetBook(ctx context.Context, id string) (Book, error)
	UpdateBook(ctx context.Context, id string, req BookPayload) (Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type Repository interface {
	CreateBook(ctx context.Context, bookEntry Book) (Book, error)
	ListBooks(ctx context.Context, req ListBooksRequest) ([]Book, error)
	GetBookByID(ctx context.Context, id string) (Book, error)
	UpdateBook(ctx context.Context, bookEntry Book) (Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type Notifier interface {
	BookAdded(ctx context.Context, name, publisher string) error
}

type Service struct {
	repo                 Repository
	notifier             Notifier
	notificationsTimeout time.Duration
}

/* A nil notifier disables notifications. */
func NewService(repo Repository, notifier Notifier, notificationsTimeout time.Duration) *Service {
	return &Service{
		repo:                 repo,
		notifier:             notifier,
		notificationsTimeout: notificationsTimeout,
	}
}

func (s *Service) AddBook(ctx context.Context, req BookPayload) (Book, error) {
	if err := ValidatePayload(req); err != nil {
		return Book{}, err
	}
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("adding book: %w", err)
	}

	id, err := gonanoid.New(idLength)
	if err != nil {
		return Book{}, fmt.Errorf("generating book id: %w", err)
	}

	createdAt := time.Now().UTC().Round(time.Millisecond)
	newBook := bookFromPayload(req)
	newBook.ID = id
	newBook.InsertedAt = createdAt
	newBook.UpdatedAt = createdAt

	storedBook, err := s.repo.CreateBook(ctx, newBook)
	if err != nil {
		return Book{}, fmt.Errorf("adding book: %w", err)
	}
	booksAdded.Inc()

	s.notifyBookAdded(storedBook)
	return storedBook, nil
}

func (s *Service) ListBooks(ctx context.Context, req ListBooksRequest) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	books, err := s.repo.ListBooks(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	summaries := make([]Summary, 0, len(books))
	for _, b := range books {
		summaries = append(summaries, b.Summarize())
	}
	return summaries, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("getting book: %w", err)
	}
	return s.repo.GetBookByID(ctx, id)
}

/* Validation runs before the lookup, so an invalid payload is rejected even when the id does not exist. */
func (s *Service) UpdateBook(ctx context.Context, id string, req BookPayload) (Book, error) {
	if err := ValidatePayload(req); err != nil {
		return Book{}, err
	}
	if err := ctx.Err(); err != nil {
		return Book{}, fmt.Errorf("updating book: %w", err)
	}

	bookEntry := bookFromPayload(req)
	bookEntry.ID = id
	bookEntry.UpdatedAt = time.Now().UTC().Round(time.Millisecond)

	updatedBook, err := s.repo.UpdateBook(ctx, bookEntry)
	if err != nil {
		return Book{}, fmt.Errorf("updating book: %w", err)
	}
	booksUpdated.Inc()
	return updatedBook, nil
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	booksDeleted.Inc()
	return nil
}

func (s *Service) notifyBookAdded(b Book) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notificationsTimeout)
		defer cancel()
		if err := s.notifier.BookAdded(ctx, b.Name, b.Publisher); err != nil {
			log.Println(err)
		}
	}()
}
