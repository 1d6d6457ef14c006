package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lite-lake/technisync/internal/domain"
)

type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeMX    RecordType = "MX"
	RecordTypeNS    RecordType = "NS"
	RecordTypePTR   RecordType = "PTR"
	RecordTypeSOA   RecordType = "SOA"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeTXT   RecordType = "TXT"
)

// Record is a single resource record as reported by a Technitium
// server. Name is the fully qualified owner name; RData carries the
// type-specific fields exactly as the API returns them.
type Record struct {
	Name  string         `json:"name"`
	Type  RecordType     `json:"type"`
	TTL   int            `json:"ttl"`
	RData map[string]any `json:"rData"`
}

// excludedTypes are never replicated between servers: zone
// infrastructure records and the DNSSEC/transaction family, which each
// server manages on its own.
var excludedTypes = map[RecordType]bool{
	RecordTypeSOA: true,
	RecordTypeNS:  true,
	"RRSIG":       true,
	"NSEC":        true,
	"NSEC3":       true,
	"DNSKEY":      true,
	"DS":          true,
	"CDS":         true,
	"CDNSKEY":     true,
	"TSIG":        true,
	"TKEY":        true,
	"AXFR":        true,
	"IXFR":        true,
}

func (t RecordType) Replicable() bool {
	return !excludedTypes[t]
}

// Key identifies a record within a zone: owner name relative to the
// zone apex, type, and the canonical rdata. TTL is deliberately not
// part of the identity so a TTL change shows up as an update rather
// than a delete plus create.
type Key struct {
	Name  string
	Type  RecordType
	RData string
}

func (r *Record) Key(zone string) Key {
	return Key{
		Name:  r.RelativeName(zone),
		Type:  r.Type,
		RData: r.CanonicalRData(),
	}
}

// RelativeName strips the zone suffix from the owner name, mapping the
// apex to "@".
func (r *Record) RelativeName(zone string) string {
	if r.Name == zone || r.Name == "" || r.Name == "@" {
		return "@"
	}
	return strings.TrimSuffix(r.Name, "."+zone)
}

// CanonicalRData renders the rdata as deterministic JSON. Map keys are
// sorted by encoding/json, so two equal rdata maps always canonicalize
// to the same string.
func (r *Record) CanonicalRData() string {
	if len(r.RData) == 0 {
		return "{}"
	}
	data, err := json.Marshal(r.RData)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	return r.Name == other.Name &&
		r.Type == other.Type &&
		r.TTL == other.TTL &&
		r.CanonicalRData() == other.CanonicalRData()
}

// RDataString returns a rdata field as a string, tolerating the JSON
// number decoding (float64) the API envelope produces.
func (r *Record) RDataString(field string) string {
	v, ok := r.RData[field]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}

func (r *Record) Validate() error {
	if r.Name == "" {
		return domain.RequiredField("name")
	}
	if r.Type == "" {
		return fmt.Errorf("%w: record type is empty", domain.ErrInvalidType)
	}
	if r.TTL < 0 {
		return fmt.Errorf("%w: ttl must be non-negative", domain.ErrInvalidTTL)
	}
	return nil
}

func (r *Record) String() string {
	return fmt.Sprintf("%s %s ttl=%d %s", r.Name, r.Type, r.TTL, r.CanonicalRData())
}
