package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookshelf-api/cmd/api/book"
	bookhttp "github.com/bookshelf-api/cmd/api/http"
	"github.com/bookshelf-api/cmd/api/inmemory"
	"github.com/bookshelf-api/cmd/api/notifications"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(config Config) error {
	store, err := inmemory.NewInMemoryStore()
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	var notifier book.Notifier
	if config.NotificationsEnabled {
		notifier = notifications.NewNtfy(config.NotificationsURL, &http.Client{})
	}

	bookService := book.NewService(store, notifier, config.NotificationsTimeout)
	bookHandler := bookhttp.NewBookHandler(bookService)

	//create and init http server:
	server := bookhttp.NewServer(bookhttp.ServerConfig{Port: config.Port, RequestTimeout: config.RequestTimeout}, bookHandler)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", server.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("unexpected http server error: %w", err)
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-sc:
	}

	ctx, shutdownRelease := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownRelease()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	log.Println("Graceful shutdown complete.")
	return nil
}
