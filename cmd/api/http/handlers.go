package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/bookshelf-api/cmd/api/book"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

type BookHandler struct {
	bookService book.ServiceAPI
}

func NewBookHandler(bookService book.ServiceAPI) *BookHandler {
	return &BookHandler{bookService: bookService}
}

/* Addresses a call to "/books/(expected id here)" according to the requested action.  */
func (h *BookHandler) bookById(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getBookById(w, r)
	case http.MethodPut:
		h.updateBook(w, r)
	case http.MethodDelete:
		h.deleteBook(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

/* Addresses a call to "/books" according to the requested action.  */
func (h *BookHandler) books(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBooks(w, r)
	case http.MethodPost:
		h.addBook(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type BookEntry struct {
	Name      string `json:"name"`
	Year      int    `json:"year"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	PageCount int    `json:"pageCount"`
	ReadPage  int    `json:"readPage"`
	Reading   bool   `json:"reading"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type AddedBookData struct {
	BookID string `json:"bookId"`
}

type BookData struct {
	Book BookResponse `json:"book"`
}

type BooksData struct {
	Books []SummaryResponse `json:"books"`
}

type BookResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       int    `json:"year"`
	Author     string `json:"author"`
	Summary    string `json:"summary"`
	Publisher  string `json:"publisher"`
	PageCount  int    `json:"pageCount"`
	ReadPage   int    `json:"readPage"`
	Finished   bool   `json:"finished"`
	Reading    bool   `json:"reading"`
	InsertedAt string `json:"insertedAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type SummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

/* Validates the entry, then stores the entry as a new book. */
func (h *BookHandler) addBook(w http.ResponseWriter, r *http.Request) {
	const operation = "add book"

	bookEntry, err := decodeEntry(r)
	if err != nil {
		responseError(w, operation, err)
		return
	}

	storedBook, err := h.bookService.AddBook(r.Context(), entryToPayload(bookEntry))
	if err != nil {
		responseError(w, operation, err)
		return
	}

	responseJSON(w, http.StatusCreated, Response{
		Status:  statusSuccess,
		Message: "book added successfully",
		Data:    AddedBookData{BookID: storedBook.ID},
	})
}

/* Returns the stored books, narrowed by the query filters. */
func (h *BookHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.bookService.ListBooks(r.Context(), extractListParams(r.URL.Query()))
	if err != nil {
		responseError(w, "list books", err)
		return
	}

	results := []SummaryResponse{}
	for _, s := range summaries {
		results = append(results, SummaryResponse{ID: s.ID, Name: s.Name, Publisher: s.Publisher})
	}

	responseJSON(w, http.StatusOK, Response{
		Status: statusSuccess,
		Data:   BooksData{Books: results},
	})
}

/* Returns the book with that specific ID. */
func (h *BookHandler) getBookById(w http.ResponseWriter, r *http.Request) {
	returnedBook, err := h.bookService.GetBook(r.Context(), isolateId(r))
	if err != nil {
		responseError(w, "get book", err)
		return
	}

	responseJSON(w, http.StatusOK, Response{
		Status: statusSuccess,
		Data:   BookData{Book: bookToResponse(returnedBook)},
	})
}

/* Validates the entry, then replaces the asked book. */
func (h *BookHandler) updateBook(w http.ResponseWriter, r *http.Request) {
	const operation = "update book"

	bookEntry, err := decodeEntry(r)
	if err != nil {
		responseError(w, operation, err)
		return
	}

	_, err = h.bookService.UpdateBook(r.Context(), isolateId(r), entryToPayload(bookEntry))
	if err != nil {
		responseError(w, operation, err)
		return
	}

	responseJSON(w, http.StatusOK, Response{Status: statusSuccess, Message: "book updated successfully"})
}

/* Removes the asked book from the shelf. */
func (h *BookHandler) deleteBook(w http.ResponseWriter, r *http.Request) {
	err := h.bookService.DeleteBook(r.Context(), isolateId(r))
	if err != nil {
		responseError(w, "delete book", err)
		return
	}

	responseJSON(w, http.StatusOK, Response{Status: statusSuccess, Message: "book deleted successfully"})
}

/* Reads the Json body into a BookEntry. */
func decodeEntry(r *http.Request) (BookEntry, error) {
	var bookEntry BookEntry
	err := json.NewDecoder(r.Body).Decode(&bookEntry)
	if err != nil {
		return BookEntry{}, book.ErrResponse{
			Code:    book.ErrResponseEntryInvalidJSON.Code,
			Message: book.ErrResponseEntryInvalidJSON.Message + ": " + err.Error(),
			Kind:    book.ErrResponseEntryInvalidJSON.Kind,
		}
	}
	return bookEntry, nil
}

/* Converts from BookEntry type to BookPayload type, with no json tags. */
func entryToPayload(b BookEntry) book.BookPayload {
	return book.BookPayload{
		Name:      b.Name,
		Year:      b.Year,
		Author:    b.Author,
		Summary:   b.Summary,
		Publisher: b.Publisher,
		PageCount: b.PageCount,
		ReadPage:  b.ReadPage,
		Reading:   b.Reading,
	}
}

/* Isolates the ID from the URL. */
func isolateId(r *http.Request) string {
	id, _ := strings.CutPrefix(r.URL.Path, "/books/")
	return id
}

/*Copy the fields of a book object to an http layer struct with json tags*/
func bookToResponse(b book.Book) BookResponse {
	return BookResponse{
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
		InsertedAt: b.InsertedAt.UTC().Format(timestampLayout),
		UpdatedAt:  b.UpdatedAt.UTC().Format(timestampLayout),
	}
}

/*Prepares the list filters of the query. Flags other than 0 or 1 are ignored.*/
func extractListParams(query url.Values) book.ListBooksRequest {
	return book.ListBooksRequest{
		Name:     query.Get("name"),
		Reading:  extractFlag(query, "reading"),
		Finished: extractFlag(query, "finished"),
	}
}

func extractFlag(query url.Values, key string) *bool {
	if !query.Has(key) {
		return nil
	}
	value := query.Get(key)
	switch value {
	case "1":
		flag := true
		return &flag
	case "0":
		flag := false
		return &flag
	default:
		log.Printf("ignoring query parameter %s=%q: must be 0 or 1", key, value)
		return nil
	}
}

/*Maps an error to its status code and writes it as a fail response.*/
func responseError(w http.ResponseWriter, operation string, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Println(err)
		responseFail(w, http.StatusGatewayTimeout, operation, book.ErrResponseRequestTimeout.Message)
		return
	}

	var errR book.ErrResponse
	if !errors.As(err, &errR) {
		log.Println(err)
		responseFail(w, http.StatusInternalServerError, operation, "internal server error")
		return
	}

	switch errR.Kind {
	case book.KindValidation:
		responseFail(w, http.StatusBadRequest, operation, errR.Message)
	case book.KindNotFound:
		responseFail(w, http.StatusNotFound, operation, errR.Message)
	case book.KindTimeout:
		responseFail(w, http.StatusGatewayTimeout, operation, errR.Message)
	default:
		log.Println(err)
		responseFail(w, http.StatusInternalServerError, operation, errR.Message)
	}
}

func responseFail(w http.ResponseWriter, status int, operation, message string) {
	responseJSON(w, status, Response{
		Status:  statusFail,
		Message: fmt.Sprintf("failed to %s: %s", operation, message),
	})
}

/*Writes a JSON response into a http.ResponseWriter. */
func responseJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		log.Println(err)
	}
}
