package service

import (
	"github.com/lite-lake/technisync/internal/domain/entity"
	"github.com/lite-lake/technisync/internal/domain/valueobject"
)

// DiffRecords computes the changes that turn the current record set of
// a zone into the desired one. Records of non-replicable types are
// ignored on both sides. Because rdata is part of the record identity,
// an update can only mean a TTL change; a changed value diffs as a
// delete plus a create.
func DiffRecords(zone string, current, desired []entity.Record) []valueobject.RecordChange {
	currentMap := indexRecords(zone, current)
	desiredMap := indexRecords(zone, desired)

	var changes []valueobject.RecordChange

	for key, want := range desiredMap {
		have, exists := currentMap[key]
		if !exists {
			changes = append(changes, valueobject.RecordChange{
				Type: valueobject.ChangeTypeCreate,
				Zone: zone,
				New:  want,
			})
			continue
		}
		if !have.Equal(want) {
			changes = append(changes, valueobject.RecordChange{
				Type: valueobject.ChangeTypeUpdate,
				Zone: zone,
				Old:  have,
				New:  want,
			})
		}
	}

	for key, have := range currentMap {
		if _, exists := desiredMap[key]; !exists {
			changes = append(changes, valueobject.RecordChange{
				Type: valueobject.ChangeTypeDelete,
				Zone: zone,
				Old:  have,
			})
		}
	}

	return changes
}

// MergeRecords unions record sets by identity, first occurrence wins.
// Used to build the desired state for zones without an owner.
func MergeRecords(zone string, sets ...[]entity.Record) []entity.Record {
	seen := make(map[entity.Key]bool)
	var merged []entity.Record
	for _, set := range sets {
		for i := range set {
			r := &set[i]
			if !r.Type.Replicable() {
				continue
			}
			key := r.Key(zone)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, *r)
		}
	}
	return merged
}

func indexRecords(zone string, records []entity.Record) map[entity.Key]*entity.Record {
	indexed := make(map[entity.Key]*entity.Record, len(records))
	for i := range records {
		r := &records[i]
		if !r.Type.Replicable() {
			continue
		}
		indexed[r.Key(zone)] = r
	}
	return indexed
}
