package review

import "errors"

var (
	ErrNotFound    = errors.New("review not found")
	ErrNotAuthor   = errors.New("only the author may modify a review")
	ErrNotAssigned = errors.New("no review assignment exists for this pair")
)
