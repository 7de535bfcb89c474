// Package model defines the core data types for Eventlife.
package model

// Model is the interface all persisted entities implement so the storage
// layer can manage database keys generically.
type Model interface {
	SetKey(key string)
	GetKey() string
}
