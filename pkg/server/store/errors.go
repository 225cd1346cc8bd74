package store

// Error is a failure reported by a record store. Message is the backend's
// human-readable text and is safe to show to clients.
type Error struct {
	Op      string
	Table   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StorageError is a failure reported by an object store
type StorageError struct {
	Op      string
	Bucket  string
	Key     string
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
