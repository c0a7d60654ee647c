package content

import (
	"errors"
	"fmt"
)

var (
	ErrCollectionRequired = errors.New("content: collection id required")
	ErrItemRequired       = errors.New("content: item id required")
	ErrNotACollection     = errors.New("content: referenced schema is not a collection")
)

// NotFoundError indicates a missing item or collection.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "content: not found"
	}
	resource := e.Resource
	if resource == "" {
		resource = "record"
	}
	if e.Key == "" {
		return fmt.Sprintf("content: %s not found", resource)
	}
	return fmt.Sprintf("content: %s %q not found", resource, e.Key)
}
