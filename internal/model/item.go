package model

// Record is the domain model for a todo entry.
// It is also the persisted shape, so the JSON tags are the storage format.
type Record struct {
	ID        int64  `json:"id" yaml:"id" cbor:"id"`
	Title     string `json:"title" yaml:"title" cbor:"title"`
	Completed bool   `json:"completed" yaml:"completed" cbor:"completed"`
}
