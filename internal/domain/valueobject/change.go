package valueobject

import (
	"fmt"

	"github.com/lite-lake/technisync/internal/domain/entity"
)

type ChangeType int

const (
	ChangeTypeNoop ChangeType = iota
	ChangeTypeCreate
	ChangeTypeUpdate
	ChangeTypeDelete
)

func (ct ChangeType) String() string {
	switch ct {
	case ChangeTypeNoop:
		return "NOOP"
	case ChangeTypeCreate:
		return "CREATE"
	case ChangeTypeUpdate:
		return "UPDATE"
	case ChangeTypeDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// RecordChange is one reconciliation step for a record within a zone.
// Old carries the currently observed record (set for update and
// delete), New the desired one (set for create and update).
type RecordChange struct {
	Type ChangeType
	Zone string
	Old  *entity.Record
	New  *entity.Record
}

func (c *RecordChange) Record() *entity.Record {
	if c.New != nil {
		return c.New
	}
	return c.Old
}

func (c *RecordChange) String() string {
	return fmt.Sprintf("%s %s %s", c.Type, c.Zone, c.Record())
}
