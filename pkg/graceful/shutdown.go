package graceful

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/porter-wallet/porter_service/pkg/logger"
)

// Stopper is anything holding background resources that must be
// released deterministically on teardown (confirmation watchers,
// cron sweepers, cache clients).
type Stopper interface {
	Stop()
}

type ShutdownManager struct {
	server   *http.Server
	db       *sql.DB
	stoppers []Stopper
	logger   *logger.Logger
	timeout  time.Duration
}

func NewShutdownManager(server *http.Server, db *sql.DB, log *logger.Logger) *ShutdownManager {
	return &ShutdownManager{
		server:  server,
		db:      db,
		logger:  log,
		timeout: 30 * time.Second,
	}
}

// Register adds a component to stop before the HTTP server drains.
// Components are stopped in registration order.
func (sm *ShutdownManager) Register(s Stopper) {
	sm.stoppers = append(sm.stoppers, s)
}

// WaitForShutdown blocks until SIGINT/SIGTERM, then tears the service
// down: background workers first (so no new trade transitions race the
// drain), then the HTTP server, then the database.
func (sm *ShutdownManager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sm.logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	for _, s := range sm.stoppers {
		s.Stop()
	}

	if err := sm.server.Shutdown(ctx); err != nil {
		sm.logger.Error("Server forced shutdown", "error", err)
	}

	if err := sm.db.Close(); err != nil {
		sm.logger.Warn("Database close error", "error", err)
	}

	sm.logger.Info("Shutdown complete")
}
