package mock

import (
	"context"

	"github.com/fwojciec/calidex"
)

var _ calidex.ServerService = (*ServerService)(nil)

// ServerService is a mock implementation of calidex.ServerService.
type ServerService struct {
	UpsertServerFn    func(ctx context.Context, server *calidex.Server) (bool, error)
	RefreshServerFn   func(ctx context.Context, server *calidex.Server) error
	FindServersFn     func(ctx context.Context) ([]*calidex.Server, error)
	FindServerByURLFn func(ctx context.Context, url string) (*calidex.Server, error)
	DeleteServerFn    func(ctx context.Context, url string) error
}

func (s *ServerService) UpsertServer(ctx context.Context, server *calidex.Server) (bool, error) {
	return s.UpsertServerFn(ctx, server)
}

func (s *ServerService) RefreshServer(ctx context.Context, server *calidex.Server) error {
	return s.RefreshServerFn(ctx, server)
}

func (s *ServerService) FindServers(ctx context.Context) ([]*calidex.Server, error) {
	return s.FindServersFn(ctx)
}

func (s *ServerService) FindServerByURL(ctx context.Context, url string) (*calidex.Server, error) {
	return s.FindServerByURLFn(ctx, url)
}

func (s *ServerService) DeleteServer(ctx context.Context, url string) error {
	return s.DeleteServerFn(ctx, url)
}
