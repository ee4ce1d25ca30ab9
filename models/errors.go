package models

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	// ErrImageNotFound is returned when a product image is not found.
	ErrImageNotFound = fmt.Errorf("image %w", ErrNotFound)
	// ErrCategoryInUse is returned when deleting a category that still has products.
	ErrCategoryInUse = fmt.Errorf("category still has products: %w", ErrConflict)
)
