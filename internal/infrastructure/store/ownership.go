package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
)

// GetZoneOwner returns the owning server of a zone, or the empty
// string when no ownership is recorded.
func (s *Store) GetZoneOwner(ctx context.Context, zone string) (string, error) {
	var owner string
	err := s.db.GetContext(ctx, &owner, `SELECT owner FROM zone_ownership WHERE zone = ?`, zone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", domain.WrapOp("get zone owner", err)
	}
	return owner, nil
}

func (s *Store) SetZoneOwner(ctx context.Context, zone, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO zone_ownership (zone, owner, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (zone) DO UPDATE SET owner = excluded.owner`,
		zone, owner, time.Now().UTC())
	return domain.WrapOp("set zone owner", err)
}

func (s *Store) ListOwnerships(ctx context.Context) ([]entity.ZoneOwnership, error) {
	var ownerships []entity.ZoneOwnership
	err := s.db.SelectContext(ctx, &ownerships, `
		SELECT zone, owner, created_at FROM zone_ownership ORDER BY zone`)
	if err != nil {
		return nil, domain.WrapOp("list ownerships", err)
	}
	return ownerships, nil
}
