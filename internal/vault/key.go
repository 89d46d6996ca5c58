package vault

import (
	"fmt"
	"strings"

	"paiid/internal/gallery"
)

// validateKey rejects keys that could escape a vault root when mapped onto
// a filesystem or bucket prefix.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty vault key", gallery.ErrInvalidArgument)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: invalid vault key %q", gallery.ErrInvalidArgument, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: invalid vault key %q", gallery.ErrInvalidArgument, key)
		}
	}
	return nil
}
