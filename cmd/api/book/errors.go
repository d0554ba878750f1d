package book

type ErrKind int

const (
	KindValidation ErrKind = iota + 1
	KindNotFound
	KindInternal
	KindTimeout
)

type ErrResponse struct {
	Code    int     `json:"error_code"`
	Message string  `json:"error_message"`
	Kind    ErrKind `json:"-"`
}

func (e ErrResponse) Error() string {
	return e.Message
}

var ErrResponseBookNameRequired = ErrResponse{100, "name required", KindValidation}
var ErrResponseReadPageExceedsPageCount = ErrResponse{101, "readPage exceeds pageCount", KindValidation}
var ErrResponseNegativePages = ErrResponse{102, "pageCount and readPage must not be negative", KindValidation}
var ErrResponseEntryInvalidJSON = ErrResponse{103, "invalid json request", KindValidation}
var ErrResponseBookNotFound = ErrResponse{110, "book not found", KindNotFound}
var ErrResponseBookNotStored = ErrResponse{120, "book was not stored", KindInternal}
var ErrResponseRequestTimeout = ErrResponse{130, "request timed out", KindTimeout}
