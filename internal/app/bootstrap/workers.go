// internal/app/bootstrap/workers.go
package bootstrap

import (
	"sync"

	"github.com/dalemusser/edulibrary/internal/app/system/workers"
	"go.uber.org/zap"
)

// Background workers started by BuildHandler and stopped by Shutdown.
var (
	workersMu       sync.Mutex
	libraryEviction *workers.LibraryEviction
)

func startLibraryEviction(w *workers.LibraryEviction) {
	workersMu.Lock()
	defer workersMu.Unlock()
	if libraryEviction != nil {
		libraryEviction.Stop()
	}
	libraryEviction = w
	w.Start()
}

func stopWorkers(logger *zap.Logger) {
	workersMu.Lock()
	defer workersMu.Unlock()
	if libraryEviction != nil {
		libraryEviction.Stop()
		libraryEviction = nil
		logger.Info("library eviction worker stopped")
	}
}
