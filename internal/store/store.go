// Package store tracks which article URLs have already been published.
package store

// Store is the posted-links set. Contains/Add are consulted once per article;
// Add is only called after a confirmed successful publish.
type Store interface {
	Contains(url string) bool
	Add(url string) error
	Load() error
	Save() error
}
