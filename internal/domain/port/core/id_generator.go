package core

// IDGenerator issues identifiers for new records
type IDGenerator interface {
	// NewID returns a globally unique record identifier
	NewID() string
	// NewAccessCode returns a short code the customer types at the locker to retrieve items
	NewAccessCode() (string, error)
}
