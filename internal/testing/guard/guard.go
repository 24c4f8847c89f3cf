// Package guard flips the runtime into test mode when imported, so binaries
// under test never connect to real infrastructure.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("WIDYA_TEST_MODE") == "" {
			_ = os.Setenv("WIDYA_TEST_MODE", "1")
		}
	})
}
