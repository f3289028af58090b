package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/calidex"
)

// Ensure LoggingServerService implements calidex.ServerService.
var _ calidex.ServerService = (*LoggingServerService)(nil)

// LoggingServerService wraps a ServerService and logs changes to servers.
type LoggingServerService struct {
	next   calidex.ServerService
	logger *slog.Logger
}

// NewLoggingServerService creates a new LoggingServerService.
func NewLoggingServerService(next calidex.ServerService, logger *slog.Logger) *LoggingServerService {
	return &LoggingServerService{next: next, logger: logger}
}

// UpsertServer delegates to the wrapped service and reports whether the
// server was new.
func (s *LoggingServerService) UpsertServer(ctx context.Context, server *calidex.Server) (bool, error) {
	created, err := s.next.UpsertServer(ctx, server)
	switch {
	case err != nil:
		s.logger.Error("upsert server", "server", server.URL, "err", err)
	case created:
		s.logger.Info("server added", "server", server.URL, "total_books", server.TotalBooks)
	default:
		s.logger.Info("server already indexed", "server", server.URL)
	}
	return created, err
}

// RefreshServer delegates to the wrapped service and logs the progress it
// persists.
func (s *LoggingServerService) RefreshServer(ctx context.Context, server *calidex.Server) error {
	err := s.next.RefreshServer(ctx, server)
	s.logger.Debug("server progress",
		"server", server.URL,
		"indexed", server.Indexed(),
		"total_books", server.TotalBooks,
		"err", err,
	)
	return err
}

// FindServers delegates to the wrapped service.
func (s *LoggingServerService) FindServers(ctx context.Context) ([]*calidex.Server, error) {
	return s.next.FindServers(ctx)
}

// FindServerByURL delegates to the wrapped service.
func (s *LoggingServerService) FindServerByURL(ctx context.Context, url string) (*calidex.Server, error) {
	return s.next.FindServerByURL(ctx, url)
}

// DeleteServer delegates to the wrapped service and logs the removal.
func (s *LoggingServerService) DeleteServer(ctx context.Context, url string) error {
	err := s.next.DeleteServer(ctx, url)
	s.logger.Info("server deleted", "server", url, "err", err)
	return err
}
