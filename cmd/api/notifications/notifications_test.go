package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestBookAdded(t *testing.T) {

	t.Run("notifies the addition of a new book without errors", func(t *testing.T) {
		is := is.New(t)

		var received string
		topic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			is.Equal(r.Method, http.MethodPost)
			is.Equal(r.URL.Path, "/bookshelf_test")
			body, _ := io.ReadAll(r.Body)
			received = string(body)
			w.WriteHeader(http.StatusOK)
		}))
		defer topic.Close()

		ntfy := NewNtfy(topic.URL+"/bookshelf_test", topic.Client())

		err := ntfy.BookAdded(context.Background(), "book to test ntfy", "Dicoding Indonesia")
		is.NoErr(err)
		is.Equal(received, "New book added: Name: book to test ntfy Publisher: Dicoding Indonesia")
	})

	t.Run("expected notification failed error", func(t *testing.T) {
		is := is.New(t)

		topic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer topic.Close()

		ntfy := NewNtfy(topic.URL, topic.Client())

		err := ntfy.BookAdded(context.Background(), "book to test a refused message", "")
		is.True(errors.Is(err, NewErrNotificationFailed(http.StatusTooManyRequests)))
	})

	t.Run("expected context timeout error", func(t *testing.T) {
		is := is.New(t)

		release := make(chan struct{})
		topic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer topic.Close()
		defer close(release)

		ntfy := NewNtfy(topic.URL, topic.Client())

		notificationsTimeout := 20 * time.Millisecond
		ctx, cancel := context.WithTimeout(context.Background(), notificationsTimeout)
		defer cancel()

		err := ntfy.BookAdded(ctx, "book to test context timeout", "")
		is.True(errors.Is(err, context.DeadlineExceeded))
	})
}
