package syncer

import (
	"context"
	"fmt"

	"github.com/lite-lake/technisync/internal/domain"
	"github.com/lite-lake/technisync/internal/domain/entity"
	"github.com/lite-lake/technisync/internal/domain/service"
	"github.com/lite-lake/technisync/internal/domain/valueobject"
	"github.com/lite-lake/technisync/internal/infrastructure/config"
	"github.com/lite-lake/technisync/internal/infrastructure/logger"
	"github.com/lite-lake/technisync/internal/infrastructure/technitium"
)

// Client is the slice of the Technitium API the sync engine needs.
type Client interface {
	ListZones(ctx context.Context) ([]technitium.Zone, error)
	CreateZone(ctx context.Context, zone string) error
	GetRecords(ctx context.Context, zone string) ([]entity.Record, error)
	AddRecord(ctx context.Context, zone string, rec *entity.Record) error
	UpdateRecord(ctx context.Context, zone string, old, updated *entity.Record) error
	DeleteRecord(ctx context.Context, zone string, rec *entity.Record) error
	ListDHCPScopes(ctx context.Context) ([]technitium.DHCPScope, error)
}

// Store is the slice of the state database the sync engine needs.
type Store interface {
	GetRecords(ctx context.Context, server, zone string) ([]entity.Record, error)
	UpsertRecord(ctx context.Context, server, zone string, rec *entity.Record) error
	DeleteRecord(ctx context.Context, server, zone string, rec *entity.Record) error
	ListZones(ctx context.Context) ([]string, error)
	GetZoneOwner(ctx context.Context, zone string) (string, error)
	SetZoneOwner(ctx context.Context, zone, owner string) error
}

// Manager runs the sync cycle: pull every server's zones into the
// state database, derive reverse zones from DHCP scopes, then push the
// desired state back out to every server. A failing server is logged
// and skipped so the rest of the fleet keeps converging.
type Manager struct {
	cfg     *config.Config
	store   Store
	clients map[string]Client
	summary *valueobject.Summary
}

func New(cfg *config.Config, st Store, clients map[string]Client) *Manager {
	return &Manager{
		cfg:     cfg,
		store:   st,
		clients: clients,
		summary: valueobject.NewSummary(),
	}
}

// Sync runs one full cycle.
func (m *Manager) Sync(ctx context.Context) error {
	syncedReverse := make(map[string]bool)

	for i := range m.cfg.Servers {
		server := &m.cfg.Servers[i]
		logger.Info("syncing records", "server", server.Name)
		if err := m.pullServer(ctx, server, syncedReverse); err != nil {
			logger.Error("server sync failed", "server", server.Name, "error", err)
		}
	}

	if err := m.propagate(ctx); err != nil {
		return domain.WrapOp("propagate changes", err)
	}

	m.logSummary()
	return nil
}

func (m *Manager) client(name string) (Client, error) {
	c, ok := m.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownServer, name)
	}
	return c, nil
}

// pullServer reconciles one server's remote zones into the state
// database.
func (m *Manager) pullServer(ctx context.Context, server *entity.Server, syncedReverse map[string]bool) error {
	client, err := m.client(server.Name)
	if err != nil {
		return err
	}

	zones, err := client.ListZones(ctx)
	if err != nil {
		return domain.WrapOp("list zones", err)
	}

	for _, zone := range zones {
		if !m.cfg.ShouldSyncZone(zone.Name) {
			continue
		}
		if err := m.pullZone(ctx, server.Name, zone.Name); err != nil {
			logger.Error("zone sync failed", "server", server.Name, "zone", zone.Name, "error", err)
			continue
		}
		if entity.IsReverseZone(zone.Name) {
			syncedReverse[zone.Name] = true
		}
	}

	if m.cfg.SyncReverseZones {
		if err := m.syncDHCPScopes(ctx, server.Name, syncedReverse); err != nil {
			logger.Error("dhcp scope sync failed", "server", server.Name, "error", err)
		}
	}
	return nil
}

// pullZone diffs a server's live records against what the state
// database last saw for that server and applies the difference.
func (m *Manager) pullZone(ctx context.Context, serverName, zone string) error {
	client, err := m.client(serverName)
	if err != nil {
		return err
	}

	remote, err := client.GetRecords(ctx, zone)
	if err != nil {
		return domain.WrapOp("get remote records", err)
	}
	local, err := m.store.GetRecords(ctx, serverName, zone)
	if err != nil {
		return err
	}
	logger.Debug("fetched records", "server", serverName, "zone", zone,
		"remote", len(remote), "local", len(local))

	for _, change := range service.DiffRecords(zone, local, remote) {
		switch change.Type {
		case valueobject.ChangeTypeCreate, valueobject.ChangeTypeUpdate:
			err = m.store.UpsertRecord(ctx, serverName, zone, change.Record())
		case valueobject.ChangeTypeDelete:
			err = m.store.DeleteRecord(ctx, serverName, zone, change.Old)
		}
		if err != nil {
			return domain.WrapOp("apply state change", err)
		}
		logger.Debug("state change", "server", serverName, "zone", zone, "change", change.String())
		m.summary.Track(serverName, zone, change.Type)
	}
	return nil
}

// syncDHCPScopes derives reverse zones from a server's DHCP scopes.
// The scope's server becomes the zone owner, so PTR records follow the
// server actually handing out the leases.
func (m *Manager) syncDHCPScopes(ctx context.Context, serverName string, syncedReverse map[string]bool) error {
	client, err := m.client(serverName)
	if err != nil {
		return err
	}

	scopes, err := client.ListDHCPScopes(ctx)
	if err != nil {
		return domain.WrapOp("list dhcp scopes", err)
	}

	for _, scope := range scopes {
		reverseZone, err := entity.ReverseZoneFromNetwork(scope.NetworkAddress, scope.SubnetMask)
		if err != nil {
			logger.Error("bad dhcp scope network", "server", serverName, "scope", scope.Name, "error", err)
			continue
		}
		if syncedReverse[reverseZone] {
			continue
		}

		for i := range m.cfg.Servers {
			m.ensureZone(ctx, m.cfg.Servers[i].Name, reverseZone)
		}
		if err := m.store.SetZoneOwner(ctx, reverseZone, serverName); err != nil {
			return err
		}
		if err := m.pullZone(ctx, serverName, reverseZone); err != nil {
			logger.Error("reverse zone sync failed", "server", serverName, "zone", reverseZone, "error", err)
			continue
		}
		syncedReverse[reverseZone] = true
	}
	return nil
}

// propagate pushes the desired state of every known zone out to the
// fleet. Owned zones converge on the owner's records; ownerless zones
// converge on the union of what every server holds.
func (m *Manager) propagate(ctx context.Context) error {
	logger.Info("propagating changes across all servers")

	zones, err := m.store.ListZones(ctx)
	if err != nil {
		return err
	}

	for _, zone := range zones {
		if entity.IsInternalZone(zone) {
			continue
		}

		owner, err := m.store.GetZoneOwner(ctx, zone)
		if err != nil {
			return err
		}

		var desired []entity.Record
		if owner != "" {
			desired, err = m.store.GetRecords(ctx, owner, zone)
			if err != nil {
				return err
			}
		} else {
			sets := make([][]entity.Record, 0, len(m.cfg.Servers))
			for i := range m.cfg.Servers {
				records, err := m.store.GetRecords(ctx, m.cfg.Servers[i].Name, zone)
				if err != nil {
					return err
				}
				sets = append(sets, records)
			}
			desired = service.MergeRecords(zone, sets...)
		}

		for i := range m.cfg.Servers {
			serverName := m.cfg.Servers[i].Name
			if serverName == owner {
				continue
			}
			if entity.IsReverseZone(zone) {
				m.ensureZone(ctx, serverName, zone)
			}
			m.pushZone(ctx, serverName, zone, desired)
		}
	}
	return nil
}

// pushZone applies the desired record set to one server. Per-record
// failures are logged and skipped; the record is retried next cycle.
func (m *Manager) pushZone(ctx context.Context, serverName, zone string, desired []entity.Record) {
	client, err := m.client(serverName)
	if err != nil {
		logger.Error("push failed", "server", serverName, "zone", zone, "error", err)
		return
	}

	current, err := client.GetRecords(ctx, zone)
	if err != nil {
		logger.Error("failed to get server records", "server", serverName, "zone", zone, "error", err)
		return
	}

	for _, change := range service.DiffRecords(zone, current, desired) {
		switch change.Type {
		case valueobject.ChangeTypeCreate:
			err = client.AddRecord(ctx, zone, change.New)
		case valueobject.ChangeTypeUpdate:
			err = client.UpdateRecord(ctx, zone, change.Old, change.New)
		case valueobject.ChangeTypeDelete:
			err = client.DeleteRecord(ctx, zone, change.Old)
		}
		if err != nil {
			logger.Error("record change failed", "server", serverName, "zone", zone,
				"change", change.Type.String(), "record", change.Record().String(), "error", err)
			continue
		}
		logger.Debug("record change applied", "server", serverName, "zone", zone, "change", change.String())
		m.summary.Track(serverName, zone, change.Type)
	}
}

// ensureZone creates a zone on a server when it is missing. Used for
// reverse zones, which may not exist everywhere yet.
func (m *Manager) ensureZone(ctx context.Context, serverName, zone string) {
	client, err := m.client(serverName)
	if err != nil {
		logger.Error("ensure zone failed", "server", serverName, "zone", zone, "error", err)
		return
	}

	zones, err := client.ListZones(ctx)
	if err != nil {
		logger.Error("ensure zone failed", "server", serverName, "zone", zone, "error", err)
		return
	}
	for _, z := range zones {
		if z.Name == zone {
			return
		}
	}

	logger.Info("creating zone", "server", serverName, "zone", zone)
	if err := client.CreateZone(ctx, zone); err != nil {
		logger.Error("zone creation failed", "server", serverName, "zone", zone, "error", err)
		return
	}
	m.summary.Track(serverName, zone, valueobject.ChangeTypeCreate)
}

func (m *Manager) logSummary() {
	if !m.summary.HasChanges() {
		logger.Info("sync summary: no changes were made during this sync")
		m.summary.Reset()
		return
	}

	for i := range m.cfg.Servers {
		serverName := m.cfg.Servers[i].Name
		zones := m.summary.Zones(serverName)
		if len(zones) == 0 {
			logger.Info("sync summary: no changes", "server", serverName)
			continue
		}
		for zone, counts := range zones {
			logger.Info("sync summary",
				"server", serverName,
				"zone", zone,
				"added", counts.Added,
				"updated", counts.Updated,
				"deleted", counts.Deleted)
		}
	}
	m.summary.Reset()
}
