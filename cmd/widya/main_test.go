package main

import (
	"testing"

	_ "github.com/widya-sms/widya-sms/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	// guard sets WIDYA_TEST_MODE before init, so main must bail out
	// without touching Postgres or Redis.
	main()
}
