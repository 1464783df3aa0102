package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TELADAN_TEST_MODE") == "" {
			_ = os.Setenv("TELADAN_TEST_MODE", "1")
		}
	})
}
