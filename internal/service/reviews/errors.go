package reviews

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrAlreadyReviewed = errors.New("listing already reviewed by user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("comment is too long")
)
