package valueobject

// ChangeCounts tallies applied changes for one zone.
type ChangeCounts struct {
	Added   int
	Updated int
	Deleted int
}

func (c *ChangeCounts) Count(t ChangeType) {
	switch t {
	case ChangeTypeCreate:
		c.Added++
	case ChangeTypeUpdate:
		c.Updated++
	case ChangeTypeDelete:
		c.Deleted++
	}
}

func (c *ChangeCounts) Total() int {
	return c.Added + c.Updated + c.Deleted
}

// Summary accumulates per-server, per-zone change counters over one
// sync cycle.
type Summary struct {
	servers map[string]map[string]*ChangeCounts
}

func NewSummary() *Summary {
	return &Summary{servers: make(map[string]map[string]*ChangeCounts)}
}

func (s *Summary) Track(server, zone string, t ChangeType) {
	zones, ok := s.servers[server]
	if !ok {
		zones = make(map[string]*ChangeCounts)
		s.servers[server] = zones
	}
	counts, ok := zones[zone]
	if !ok {
		counts = &ChangeCounts{}
		zones[zone] = counts
	}
	counts.Count(t)
}

func (s *Summary) Zones(server string) map[string]*ChangeCounts {
	return s.servers[server]
}

func (s *Summary) HasChanges() bool {
	for _, zones := range s.servers {
		for _, counts := range zones {
			if counts.Total() > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Summary) Reset() {
	s.servers = make(map[string]map[string]*ChangeCounts)
}
