package gallery

import "io"

// Vault is an archive backend for entry images.
// Keys are slash-separated: <repo>/<date>/<entry name>/<file>.
type Vault interface {
	// Put stores size bytes read from r under key, replacing any previous object.
	Put(key string, r io.Reader, size int64) error

	// Get writes the object stored under key to w.
	Get(key string, w io.Writer) error

	// List returns the keys starting with prefix in ascending order.
	List(prefix string) ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
