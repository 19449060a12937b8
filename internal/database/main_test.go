//go:build integration
// +build integration

package database_test

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"testing"

	"dashboard-backend/internal/testutils"
)

// TestMain runs before all database tests and ensures proper Docker cleanup
func TestMain(m *testing.M) {
	// Set up signal handling for graceful cleanup on interruption (Ctrl+C)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("database tests interrupted, cleaning up Docker containers...")
		testutils.CleanupSharedContainer()
		os.Exit(1)
	}()

	log.Println("starting database integration tests...")
	code := m.Run()

	log.Println("database tests completed, cleaning up Docker containers...")
	testutils.CleanupSharedContainer()

	os.Exit(code)
}
