package cart

import "errors"

var (
	ErrStorageRead  = errors.New("cart storage read failed")
	ErrStorageWrite = errors.New("cart storage write failed")
	ErrNoProvider   = errors.New("cart must be used within a cart provider")
)
