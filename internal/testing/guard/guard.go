// Package guard forces test mode on when imported from a test binary, so
// accidental main() execution during tests never touches live services.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("GRANARY_TEST_MODE") == "" {
			_ = os.Setenv("GRANARY_TEST_MODE", "1")
		}
	})
}
