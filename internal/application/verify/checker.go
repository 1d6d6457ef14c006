package verify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"

	"github.com/lite-lake/technisync/internal/domain/entity"
	"github.com/lite-lake/technisync/internal/domain/service"
	"github.com/lite-lake/technisync/internal/infrastructure/config"
	"github.com/lite-lake/technisync/internal/infrastructure/logger"
)

// Store is the read-only slice of the state database verification
// needs.
type Store interface {
	ListZones(ctx context.Context) ([]string, error)
	GetRecords(ctx context.Context, server, zone string) ([]entity.Record, error)
	GetZoneOwner(ctx context.Context, zone string) (string, error)
}

// Checker spot-checks that what the state database considers desired
// actually resolves on every server, by querying each server's
// resolver directly over port 53. It never mutates anything.
type Checker struct {
	cfg    *config.Config
	store  Store
	client *dns.Client
}

type Mismatch struct {
	Server   string
	Zone     string
	Name     string
	Type     entity.RecordType
	Expected string
	Reason   string
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("%s: %s %s %s (%s): %s", m.Server, m.Zone, m.Name, m.Type, m.Expected, m.Reason)
}

type Report struct {
	Checked    int
	Mismatches []Mismatch
}

func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

func New(cfg *config.Config, st Store) *Checker {
	return &Checker{
		cfg:    cfg,
		store:  st,
		client: &dns.Client{Timeout: 2 * time.Second},
	}
}

// verifiable are the types whose live answers map cleanly onto a
// single rdata field.
var verifiable = map[entity.RecordType]struct {
	qtype uint16
	field string
}{
	entity.RecordTypeA:     {qtype: dns.TypeA, field: "ipAddress"},
	entity.RecordTypeAAAA:  {qtype: dns.TypeAAAA, field: "ipAddress"},
	entity.RecordTypeCNAME: {qtype: dns.TypeCNAME, field: "cname"},
	entity.RecordTypeTXT:   {qtype: dns.TypeTXT, field: "text"},
}

// Run checks every forward zone's desired records against every
// server's resolver.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	zones, err := c.store.ListZones(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, zone := range zones {
		if entity.IsInternalZone(zone) || entity.IsReverseZone(zone) {
			continue
		}

		desired, err := c.desiredRecords(ctx, zone)
		if err != nil {
			return nil, err
		}
		if len(desired) == 0 {
			continue
		}

		for i := range c.cfg.Servers {
			server := &c.cfg.Servers[i]
			addr := net.JoinHostPort(server.Host(), strconv.Itoa(c.cfg.DNSPort))
			c.checkServer(ctx, report, server.Name, addr, zone, desired)
		}
	}
	return report, nil
}

func (c *Checker) desiredRecords(ctx context.Context, zone string) ([]entity.Record, error) {
	owner, err := c.store.GetZoneOwner(ctx, zone)
	if err != nil {
		return nil, err
	}
	if owner != "" {
		return c.store.GetRecords(ctx, owner, zone)
	}

	sets := make([][]entity.Record, 0, len(c.cfg.Servers))
	for i := range c.cfg.Servers {
		records, err := c.store.GetRecords(ctx, c.cfg.Servers[i].Name, zone)
		if err != nil {
			return nil, err
		}
		sets = append(sets, records)
	}
	return service.MergeRecords(zone, sets...), nil
}

func (c *Checker) checkServer(ctx context.Context, report *Report, serverName, addr, zone string, desired []entity.Record) {
	for name, records := range groupByNameAndType(desired) {
		probe := verifiable[records[0].Type]

		answers, err := c.lookup(ctx, addr, name.name, probe.qtype)
		if err != nil {
			logger.Warn("verification query failed", "server", serverName, "zone", zone,
				"name", name.name, "type", records[0].Type, "error", err)
			for _, rec := range records {
				report.Checked++
				report.Mismatches = append(report.Mismatches, Mismatch{
					Server:   serverName,
					Zone:     zone,
					Name:     name.name,
					Type:     rec.Type,
					Expected: rec.RDataString(probe.field),
					Reason:   fmt.Sprintf("query failed: %v", err),
				})
			}
			continue
		}

		for _, rec := range records {
			report.Checked++
			expected := rec.RDataString(probe.field)
			if !containsValue(answers, expected) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Server:   serverName,
					Zone:     zone,
					Name:     name.name,
					Type:     rec.Type,
					Expected: expected,
					Reason:   fmt.Sprintf("not in answers %v", answers),
				})
			}
		}
	}
}

type nameType struct {
	name  string
	qtype uint16
}

func groupByNameAndType(records []entity.Record) map[nameType][]entity.Record {
	grouped := make(map[nameType][]entity.Record)
	for i := range records {
		rec := &records[i]
		probe, ok := verifiable[rec.Type]
		if !ok {
			continue
		}
		key := nameType{name: rec.Name, qtype: probe.qtype}
		grouped[key] = append(grouped[key], *rec)
	}
	return grouped
}

func (c *Checker) lookup(ctx context.Context, addr, name string, qtype uint16) ([]string, error) {
	msg := &dns.Msg{}
	msg.SetQuestion(dns.Fqdn(name), qtype)

	resp, _, err := c.client.ExchangeContext(ctx, msg, addr)
	if err != nil {
		return nil, err
	}

	var values []string
	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			values = append(values, v.A.String())
		case *dns.AAAA:
			values = append(values, v.AAAA.String())
		case *dns.CNAME:
			values = append(values, trimDot(v.Target))
		case *dns.TXT:
			values = append(values, joinTXT(v.Txt))
		}
	}
	return values, nil
}

// containsValue compares with IP normalization so 2001:DB8::1 and
// 2001:db8::1 count as the same answer.
func containsValue(answers []string, expected string) bool {
	normalized := normalizeValue(expected)
	for _, a := range answers {
		if normalizeValue(a) == normalized {
			return true
		}
	}
	return false
}

func normalizeValue(v string) string {
	if ip := net.ParseIP(v); ip != nil {
		return ip.String()
	}
	return v
}

func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

func joinTXT(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}
