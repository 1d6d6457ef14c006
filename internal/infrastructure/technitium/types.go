package technitium

// Zone is one authoritative zone as listed by /api/zones/list.
type Zone struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Internal bool   `json:"internal"`
	Disabled bool   `json:"disabled"`
}

// DHCPScope is one DHCP scope as listed by /api/dhcp/scopes/list. The
// network address and subnet mask are what reverse zones are derived
// from.
type DHCPScope struct {
	Name            string `json:"name"`
	Enabled         bool   `json:"enabled"`
	NetworkAddress  string `json:"networkAddress"`
	SubnetMask      string `json:"subnetMask"`
	StartingAddress string `json:"startingAddress"`
	EndingAddress   string `json:"endingAddress"`
}
