package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
)

type recordRow struct {
	Name  string `db:"name"`
	Type  string `db:"type"`
	TTL   int    `db:"ttl"`
	RData string `db:"rdata"`
}

func (r *recordRow) toRecord() (entity.Record, error) {
	rec := entity.Record{
		Name: r.Name,
		Type: entity.RecordType(r.Type),
		TTL:  r.TTL,
	}
	if r.RData != "" {
		if err := json.Unmarshal([]byte(r.RData), &rec.RData); err != nil {
			return rec, domain.WrapOp("decode stored rdata", err)
		}
	}
	return rec, nil
}

// GetRecords returns the live records last observed for a server in a
// zone. Soft-deleted rows are excluded.
func (s *Store) GetRecords(ctx context.Context, server, zone string) ([]entity.Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT name, type, ttl, rdata
		FROM dns_records
		WHERE server = ? AND zone = ? AND deleted_at IS NULL
		ORDER BY name, type, rdata`, server, zone)
	if err != nil {
		return nil, domain.WrapOp("select records", err)
	}

	records := make([]entity.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// UpsertRecord inserts a record or, when the identical record exists
// (including soft-deleted), revives it with the new TTL. Record
// identity is (server, zone, name, type, rdata), so multi-value
// round-robin sets keep one row per value.
func (s *Store) UpsertRecord(ctx context.Context, server, zone string, rec *entity.Record) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dns_records (server, zone, name, type, ttl, rdata, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (server, zone, name, type, rdata) DO UPDATE SET
			ttl = excluded.ttl,
			updated_at = excluded.updated_at,
			deleted_at = NULL`,
		server, zone, rec.Name, string(rec.Type), rec.TTL, rec.CanonicalRData(), now, now)
	return domain.WrapOp("upsert record", err)
}

// DeleteRecord soft-deletes a record row; history stays queryable.
func (s *Store) DeleteRecord(ctx context.Context, server, zone string, rec *entity.Record) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE dns_records
		SET deleted_at = ?
		WHERE server = ? AND zone = ? AND name = ? AND type = ? AND rdata = ? AND deleted_at IS NULL`,
		time.Now().UTC(), server, zone, rec.Name, string(rec.Type), rec.CanonicalRData())
	return domain.WrapOp("delete record", err)
}

// ListZones returns every zone the store has ever seen, including
// zones whose records are all soft-deleted. Propagation relies on that
// to push deletions out to the remaining servers.
func (s *Store) ListZones(ctx context.Context) ([]string, error) {
	var zones []string
	err := s.db.SelectContext(ctx, &zones, `SELECT DISTINCT zone FROM dns_records ORDER BY zone`)
	if err != nil {
		return nil, domain.WrapOp("list zones", err)
	}
	return zones, nil
}

// CountRecords counts the live rows for a zone across all servers.
func (s *Store) CountRecords(ctx context.Context, zone string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM dns_records WHERE zone = ? AND deleted_at IS NULL`, zone)
	if err != nil {
		return 0, domain.WrapOp("count records", err)
	}
	return count, nil
}
