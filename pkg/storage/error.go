package storage

import "fmt"

// CorruptError is returned when a stored bucket cannot be decoded.
type CorruptError struct {
	Bucket string
	Err    error
}

func (e CorruptError) Error() string {
	return fmt.Sprintf("corrupt %s bucket: %v", e.Bucket, e.Err)
}

func (e CorruptError) Unwrap() error {
	return e.Err
}
