package listings

import "errors"

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrInvalidRadius      = errors.New("invalid radius")
)
