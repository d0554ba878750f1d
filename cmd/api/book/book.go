package book

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Book struct {
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

/* Fields a client may set when adding or updating a book. Field order matters: validation reports the first failing field. */
type BookPayload struct {
	Name      string `validate:"required"`
	Year      int
	Author    string
	Summary   string
	Publisher string
	PageCount int `validate:"min=0"`
	ReadPage  int `validate:"min=0,ltefield=PageCount"`
	Reading   bool
}

type Summary struct {
	ID        string
	Name      string
	Publisher string
}

type ListBooksRequest struct {
	Name     string
	Reading  *bool
	Finished *bool
}

var validate = validator.New()

/* Verifies the payload and returns the sentinel error of the first rule it breaks. */
func ValidatePayload(p BookPayload) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validating book payload: %w", err)
	}

	fe := fieldErrs[0]
	switch {
	case fe.Field() == "Name":
		return ErrResponseBookNameRequired
	case fe.Field() == "ReadPage" && fe.Tag() == "ltefield":
		return ErrResponseReadPageExceedsPageCount
	default:
		return ErrResponseNegativePages
	}
}

/* Builds a book from a payload. Finished is always derived, never taken from the client. */
func bookFromPayload(p BookPayload) Book {
	return Book{
		Name:      p.Name,
		Year:      p.Year,
		Author:    p.Author,
		Summary:   p.Summary,
		Publisher: p.Publisher,
		PageCount: p.PageCount,
		ReadPage:  p.ReadPage,
		Finished:  p.ReadPage == p.PageCount,
		Reading:   p.Reading,
	}
}

func (b Book) Summarize() Summary {
	return Summary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}

/* Reports whether a book passes every filter set on the request. Unset filters always pass. */
func (r ListBooksRequest) Matches(b Book) bool {
	if r.Name != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(r.Name)) {
		return false
	}
	if r.Reading != nil && b.Reading != *r.Reading {
		return false
	}
	if r.Finished != nil && b.Finished != *r.Finished {
		return false
	}
	return true
}
