package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/calidex"
)

// Compile-time interface verification.
var _ calidex.ServerService = (*ServerService)(nil)

// ServerService implements calidex.ServerService using SQLite.
type ServerService struct {
	db *DB
}

// NewServerService creates a new ServerService.
func NewServerService(db *DB) *ServerService {
	return &ServerService{db: db}
}

// UpsertServer inserts the server if it is new. Existing servers keep their
// stored metadata.
func (s *ServerService) UpsertServer(ctx context.Context, server *calidex.Server) (bool, error) {
	if err := server.Validate(); err != nil {
		return false, err
	}

	doc, err := json.Marshal(server)
	if err != nil {
		return false, fmt.Errorf("failed to encode server: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO servers (server, document)
		VALUES (?, ?)
		ON CONFLICT(server) DO NOTHING
	`, server.URL, string(doc))
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// RefreshServer overwrites the stored server metadata.
func (s *ServerService) RefreshServer(ctx context.Context, server *calidex.Server) error {
	if err := server.Validate(); err != nil {
		return err
	}

	doc, err := json.Marshal(server)
	if err != nil {
		return fmt.Errorf("failed to encode server: %w", err)
	}

	result, err := s.db.ExecContext(ctx, "UPDATE servers SET document = ? WHERE server = ?", string(doc), server.URL)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return calidex.Errorf(calidex.ENOTFOUND, "server %q not found", server.URL)
	}

	return nil
}

// FindServers retrieves all servers ordered by URL.
func (s *ServerService) FindServers(ctx context.Context) ([]*calidex.Server, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT server, document FROM servers ORDER BY server")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servers []*calidex.Server
	for rows.Next() {
		var url, doc string
		if err := rows.Scan(&url, &doc); err != nil {
			return nil, err
		}

		server, err := decodeServer(url, doc)
		if err != nil {
			return nil, err
		}
		servers = append(servers, server)
	}

	return servers, rows.Err()
}

// FindServerByURL retrieves a server by URL.
func (s *ServerService) FindServerByURL(ctx context.Context, url string) (*calidex.Server, error) {
	var doc string

	err := s.db.QueryRowContext(ctx, "SELECT document FROM servers WHERE server = ?", url).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, calidex.Errorf(calidex.ENOTFOUND, "server %q not found", url)
	}
	if err != nil {
		return nil, err
	}

	return decodeServer(url, doc)
}

// DeleteServer permanently removes a server and its books.
func (s *ServerService) DeleteServer(ctx context.Context, url string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM servers WHERE server = ?", url)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return calidex.Errorf(calidex.ENOTFOUND, "server %q not found", url)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE server = ?", url); err != nil {
		return err
	}

	return tx.Commit()
}

func decodeServer(url, doc string) (*calidex.Server, error) {
	server := &calidex.Server{URL: url}
	if err := json.Unmarshal([]byte(doc), server); err != nil {
		return nil, fmt.Errorf("failed to decode server %q: %w", url, err)
	}
	if server.Libraries == nil {
		server.Libraries = map[string]*calidex.Library{}
	}
	return server, nil
}
