package region

import "fmt"

// Zone is a named group of regions. The first region is the zone's hub.
type Zone struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Regions []string `json:"regions" yaml:"regions"`
}

// Hub returns the zone's representative region.
func (z Zone) Hub() string {
	if len(z.Regions) == 0 {
		return ""
	}
	return z.Regions[0]
}

// ZoneMap is a disjoint partition of regions into zones. It is immutable
// once built.
type ZoneMap struct {
	zones []Zone
	byKey map[string]int
	hubs  map[string]string
}

// NewZoneMap validates and indexes a partition. A region listed under two
// zones, or twice in one zone, is rejected.
func NewZoneMap(zones []Zone) (*ZoneMap, error) {
	m := &ZoneMap{
		zones: make([]Zone, 0, len(zones)),
		byKey: make(map[string]int),
		hubs:  make(map[string]string),
	}

	for i, z := range zones {
		if len(z.Regions) == 0 {
			return nil, fmt.Errorf("zone %q has no regions", z.ID)
		}
		regions := make([]string, 0, len(z.Regions))
		for _, r := range z.Regions {
			name := Normalize(r)
			key := Key(name)
			if key == "" {
				return nil, fmt.Errorf("zone %q lists an empty region", z.ID)
			}
			if prev, ok := m.byKey[key]; ok {
				return nil, fmt.Errorf("region %q listed under both %q and %q", name, zones[prev].ID, z.ID)
			}
			m.byKey[key] = i
			regions = append(regions, name)
		}
		z.Regions = regions
		m.zones = append(m.zones, z)
	}

	for key, idx := range m.byKey {
		m.hubs[key] = m.zones[idx].Hub()
	}
	return m, nil
}

// MustZoneMap is NewZoneMap for static tables; it panics on an invalid partition.
func MustZoneMap(zones []Zone) *ZoneMap {
	m, err := NewZoneMap(zones)
	if err != nil {
		panic(err)
	}
	return m
}

// Zones returns a copy of the partition in declaration order.
func (m *ZoneMap) Zones() []Zone {
	out := make([]Zone, len(m.zones))
	for i, z := range m.zones {
		out[i] = Zone{ID: z.ID, Name: z.Name, Regions: append([]string(nil), z.Regions...)}
	}
	return out
}

// ZoneOf returns the zone containing region.
func (m *ZoneMap) ZoneOf(region string) (Zone, bool) {
	idx, ok := m.byKey[Key(region)]
	if !ok {
		return Zone{}, false
	}
	z := m.zones[idx]
	return Zone{ID: z.ID, Name: z.Name, Regions: append([]string(nil), z.Regions...)}, true
}

// Hub returns the hub region of region's zone.
func (m *ZoneMap) Hub(region string) (string, bool) {
	hub, ok := m.hubs[Key(region)]
	return hub, ok
}

// Members returns every region in region's zone, hub first. Nil when the
// region is not zoned.
func (m *ZoneMap) Members(region string) []string {
	idx, ok := m.byKey[Key(region)]
	if !ok {
		return nil
	}
	return append([]string(nil), m.zones[idx].Regions...)
}

// Len returns the number of zoned regions.
func (m *ZoneMap) Len() int { return len(m.byKey) }

// Nigeria partitions the 36 states and the capital territory into the six
// geopolitical zones.
var Nigeria = MustZoneMap([]Zone{
	{ID: "south_west", Name: "South West", Regions: []string{"Lagos", "Ogun", "Oyo", "Osun", "Ondo", "Ekiti"}},
	{ID: "south_south", Name: "South South", Regions: []string{"Rivers", "Delta", "Edo", "Bayelsa", "Cross River", "Akwa Ibom"}},
	{ID: "south_east", Name: "South East", Regions: []string{"Enugu", "Anambra", "Imo", "Abia", "Ebonyi"}},
	{ID: "north_central", Name: "North Central", Regions: []string{Capital, "Niger", "Kwara", "Kogi", "Benue", "Nasarawa", "Plateau"}},
	{ID: "north_west", Name: "North West", Regions: []string{"Kano", "Kaduna", "Katsina", "Kebbi", "Sokoto", "Zamfara", "Jigawa"}},
	{ID: "north_east", Name: "North East", Regions: []string{"Bauchi", "Adamawa", "Borno", "Gombe", "Taraba", "Yobe"}},
})
