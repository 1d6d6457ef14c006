package technitium

import (
	"net/url"

	"github.com/lite-lake/technisync/internal/domain/entity"
)

// rdataFields maps a record type to the rdata fields the write
// endpoints expect as individual parameters. Updates send the same
// fields again with a "new" prefix; Technitium parses parameter names
// case-insensitively, so no recapitalization is needed.
var rdataFields = map[entity.RecordType][]string{
	entity.RecordTypeA:     {"ipAddress"},
	entity.RecordTypeAAAA:  {"ipAddress"},
	entity.RecordTypeCNAME: {"cname"},
	entity.RecordTypeMX:    {"preference", "exchange"},
	entity.RecordTypeNS:    {"nameServer"},
	entity.RecordTypePTR:   {"ptrName"},
	entity.RecordTypeSRV:   {"priority", "weight", "port", "target"},
	entity.RecordTypeTXT:   {"text"},
	entity.RecordTypeSOA: {
		"primaryNameServer", "responsiblePerson", "serial",
		"refresh", "retry", "expire", "minimum",
	},
}

func applyRData(params url.Values, rec *entity.Record, prefix string) {
	fields, ok := rdataFields[rec.Type]
	if !ok {
		// unknown type: pass every rdata field through as-is
		for field := range rec.RData {
			params.Set(prefix+field, rec.RDataString(field))
		}
		return
	}
	for _, field := range fields {
		params.Set(prefix+field, rec.RDataString(field))
	}
}
