package inventory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"rackops/core/utils"

	"gorm.io/gorm"
)

// Machine is a server or virtual machine registered in the inventory.
type Machine struct {
	ID   int        `json:"id"`
	Name string     `json:"name"`
	Type ObjectType `json:"type"`
}

// Allocation binds an IPv4 address to an interface of a machine.
type Allocation struct {
	IP          string         `json:"ip"`
	MachineID   int            `json:"machine_id"`
	MachineName string         `json:"machine_name"`
	Interface   string         `json:"interface"`
	Kind        AllocationKind `json:"kind"`
}

// OSVersion is the recorded OS release of a machine.
// Present is false when the attribute has never been set. Symbol is empty
// when the stored dictionary key has no entry in OSReleases.
type OSVersion struct {
	Present bool   `json:"present"`
	Symbol  string `json:"symbol"`
	Key     uint32 `json:"key"`
}

// Store reads and patches the Racktables database.
type Store struct {
	db *gorm.DB
}

// New creates a store on top of an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

type tagRow struct {
	ObjectID int    `gorm:"column:object_id"`
	Tag      string `gorm:"column:tag"`
}

type allocationRow struct {
	ObjectID   int     `gorm:"column:object_id"`
	ObjectName *string `gorm:"column:object_name"`
	Name       string  `gorm:"column:name"`
	Type       string  `gorm:"column:type"`
	IP         uint32  `gorm:"column:ip"`
}

// AllServers returns every named server and virtual machine, ordered by name.
func (s *Store) AllServers(ctx context.Context) ([]Machine, error) {
	return s.servers(ctx, ObjectTypeServer, ObjectTypeVM)
}

// PhysicalServers returns every named physical server, ordered by name.
func (s *Store) PhysicalServers(ctx context.Context) ([]Machine, error) {
	return s.servers(ctx, ObjectTypeServer)
}

func (s *Store) servers(ctx context.Context, types ...ObjectType) ([]Machine, error) {
	ids := make([]int, len(types))
	for i, t := range types {
		ids[i] = int(t)
	}

	var rows []Object
	err := s.db.WithContext(ctx).
		Raw("SELECT id, name, objtype_id FROM Object WHERE objtype_id IN ? AND name IS NOT NULL ORDER BY name", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("list servers", err)
	}

	machines := make([]Machine, 0, len(rows))
	for _, r := range rows {
		if r.Name == nil || *r.Name == "" {
			continue
		}
		machines = append(machines, Machine{ID: r.ID, Name: *r.Name, Type: ObjectType(r.ObjtypeID)})
	}
	return machines, nil
}

// ActiveServers returns the machines that are not tagged free, retired or
// to be retired and whose power state is not "off".
func (s *Store) ActiveServers(ctx context.Context) ([]Machine, error) {
	all, err := s.AllServers(ctx)
	if err != nil {
		return nil, err
	}

	var tags []tagRow
	err = s.db.WithContext(ctx).
		Raw("SELECT ts.entity_id AS object_id, tt.tag FROM TagStorage ts JOIN TagTree tt ON ts.tag_id = tt.id WHERE ts.entity_realm = ?", "object").
		Scan(&tags).Error
	if err != nil {
		return nil, queryErr("list tags", err)
	}

	var off []AttributeValue
	err = s.db.WithContext(ctx).
		Raw("SELECT object_id FROM AttributeValue WHERE attr_id = ? AND uint_value = ?", int(AttrPowerState), PowerStateOff).
		Scan(&off).Error
	if err != nil {
		return nil, queryErr("list power state", err)
	}

	tagged := make(map[int][]string)
	for _, t := range tags {
		tagged[t.ObjectID] = append(tagged[t.ObjectID], t.Tag)
	}
	poweredOff := make(map[int]bool, len(off))
	for _, a := range off {
		poweredOff[a.ObjectID] = true
	}

	return filterActive(all, tagged, poweredOff), nil
}

func filterActive(machines []Machine, tags map[int][]string, poweredOff map[int]bool) []Machine {
	active := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if m.Name == "" || poweredOff[m.ID] || hasAny(tags[m.ID], InactiveTags) {
			continue
		}
		active = append(active, m)
	}
	return active
}

func hasAny(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// NamePattern compiles a machine name pattern. The pattern matches from the
// start of the name.
func NamePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// FilterByName returns the machines whose name matches re, in order.
// A nil re matches every machine.
func FilterByName(machines []Machine, re *regexp.Regexp) []Machine {
	matched := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if re == nil || re.MatchString(m.Name) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Tags returns the tags attached to a machine.
func (s *Store) Tags(ctx context.Context, machineID int) ([]string, error) {
	var rows []tagRow
	err := s.db.WithContext(ctx).
		Raw("SELECT ts.entity_id AS object_id, tt.tag FROM TagStorage ts JOIN TagTree tt ON ts.tag_id = tt.id WHERE ts.entity_realm = ? AND ts.entity_id = ?", "object", machineID).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("machine tags", err)
	}

	tags := make([]string, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, r.Tag)
	}
	return tags, nil
}

// HasTag reports whether the machine carries any of the given tags.
func (s *Store) HasTag(ctx context.Context, machineID int, tags ...string) (bool, error) {
	have, err := s.Tags(ctx, machineID)
	if err != nil {
		return false, err
	}
	return hasAny(have, tags), nil
}

// RecordedIPs returns the allocated addresses of a machine grouped by interface name.
func (s *Store) RecordedIPs(ctx context.Context, machineID int) (map[string][]string, error) {
	var rows []IPv4Allocation
	err := s.db.WithContext(ctx).
		Raw("SELECT object_id, ip, name, type FROM IPv4Allocation WHERE object_id = ? ORDER BY name, ip", machineID).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("recorded addresses", err)
	}

	ips := make(map[string][]string)
	for _, r := range rows {
		ips[r.Name] = append(ips[r.Name], utils.IntToIP(r.IP))
	}
	return ips, nil
}

// RecordedInterfaces returns the ports of a machine with their canonical MAC.
func (s *Store) RecordedInterfaces(ctx context.Context, machineID int) (map[string]string, error) {
	var rows []Port
	err := s.db.WithContext(ctx).
		Raw("SELECT id, object_id, name, l2address FROM Port WHERE object_id = ?", machineID).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("recorded interfaces", err)
	}

	ports := make(map[string]string, len(rows))
	for _, r := range rows {
		mac := utils.SentinelMAC
		if r.L2Address != nil {
			mac = utils.CanonicalMAC(*r.L2Address)
		}
		ports[r.Name] = mac
	}
	return ports, nil
}

// FindAllocation returns every allocation of the address. An empty slice
// means the address is free.
func (s *Store) FindAllocation(ctx context.Context, ip string) ([]Allocation, error) {
	n, err := utils.IPToInt(ip)
	if err != nil {
		return nil, err
	}

	var rows []allocationRow
	err = s.db.WithContext(ctx).
		Raw("SELECT a.object_id, o.name AS object_name, a.name, a.type, a.ip FROM IPv4Allocation a LEFT JOIN Object o ON o.id = a.object_id WHERE a.ip = ?", n).
		Scan(&rows).Error
	if err != nil {
		return nil, queryErr("find allocation", err)
	}

	allocs := make([]Allocation, 0, len(rows))
	for _, r := range rows {
		a := Allocation{IP: ip, MachineID: r.ObjectID, Interface: r.Name, Kind: AllocationKind(r.Type)}
		if r.ObjectName != nil {
			a.MachineName = *r.ObjectName
		}
		allocs = append(allocs, a)
	}
	return allocs, nil
}

// Allocate records the address on the machine's interface.
// The insert is a single statement committed on its own.
func (s *Store) Allocate(ctx context.Context, ip string, machineID int, iface string, kind AllocationKind) error {
	n, err := utils.IPToInt(ip)
	if err != nil {
		return err
	}
	if kind == "" {
		kind = AllocationRegular
	}

	err = s.db.WithContext(ctx).
		Exec("INSERT INTO IPv4Allocation (object_id, ip, name, type) VALUES (?, ?, ?, ?)", machineID, n, iface, string(kind)).
		Error
	if err != nil {
		return queryErr("allocate "+ip, err)
	}
	return nil
}

// OSVersion returns the recorded OS release of the machine.
func (s *Store) OSVersion(ctx context.Context, machineID int) (OSVersion, error) {
	key, ok, err := s.AttributeUint(ctx, machineID, AttrOSRelease)
	if err != nil || !ok {
		return OSVersion{}, err
	}
	symbol, _ := osSymbol(key)
	return OSVersion{Present: true, Symbol: symbol, Key: key}, nil
}

// SetOSVersion stores the release symbol for the machine, inserting the
// attribute row or replacing its value.
func (s *Store) SetOSVersion(ctx context.Context, machine Machine, symbol string) error {
	key, ok := OSReleases[symbol]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOSVersion, symbol)
	}

	err := s.db.WithContext(ctx).
		Exec("INSERT INTO AttributeValue (object_id, object_tid, attr_id, uint_value) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE uint_value = VALUES(uint_value)",
			machine.ID, int(machine.Type), int(AttrOSRelease), key).
		Error
	if err != nil {
		return queryErr("set os version", err)
	}
	return nil
}

// AttributeUint returns the uint value of an attribute. ok is false when the
// machine has no such attribute.
func (s *Store) AttributeUint(ctx context.Context, machineID int, attr Attribute) (uint32, bool, error) {
	var rows []AttributeValue
	err := s.db.WithContext(ctx).
		Raw("SELECT object_id, attr_id, uint_value FROM AttributeValue WHERE object_id = ? AND attr_id = ?", machineID, int(attr)).
		Scan(&rows).Error
	if err != nil {
		return 0, false, queryErr(fmt.Sprintf("attribute %d", attr), err)
	}
	if len(rows) == 0 || rows[0].UintValue == nil {
		return 0, false, nil
	}
	return *rows[0].UintValue, true, nil
}

// AttributeString returns the string value of an attribute, or "" when unset.
func (s *Store) AttributeString(ctx context.Context, machineID int, attr Attribute) (string, error) {
	var rows []AttributeValue
	err := s.db.WithContext(ctx).
		Raw("SELECT object_id, attr_id, string_value FROM AttributeValue WHERE object_id = ? AND attr_id = ?", machineID, int(attr)).
		Scan(&rows).Error
	if err != nil {
		return "", queryErr(fmt.Sprintf("attribute %d", attr), err)
	}
	if len(rows) == 0 || rows[0].StringValue == nil {
		return "", nil
	}
	return *rows[0].StringValue, nil
}

// DictionaryValue resolves a dictionary-typed attribute to its display text.
func (s *Store) DictionaryValue(ctx context.Context, machineID int, attr Attribute) (string, error) {
	var rows []Dictionary
	err := s.db.WithContext(ctx).
		Raw("SELECT d.dict_key, d.dict_value FROM AttributeValue av JOIN Dictionary d ON d.dict_key = av.uint_value WHERE av.object_id = ? AND av.attr_id = ?", machineID, int(attr)).
		Scan(&rows).Error
	if err != nil {
		return "", queryErr(fmt.Sprintf("dictionary attribute %d", attr), err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return cleanDictValue(rows[0].DictValue), nil
}

// cleanDictValue strips the Racktables %GPASS%/%GSKIP% markup.
func cleanDictValue(v string) string {
	v = strings.ReplaceAll(v, "%GPASS%", " ")
	v = strings.ReplaceAll(v, "%GSKIP%", " ")
	return strings.Join(strings.Fields(v), " ")
}

// FreeIP returns the first host address of the named network, starting at
// offset from the network address, that is neither allocated nor reserved.
func (s *Store) FreeIP(ctx context.Context, network string, offset int) (string, error) {
	var nets []IPv4Network
	err := s.db.WithContext(ctx).
		Raw("SELECT id, ip, mask, name FROM IPv4Network WHERE name = ?", network).
		Scan(&nets).Error
	if err != nil {
		return "", queryErr("find network", err)
	}
	if len(nets) == 0 {
		return "", fmt.Errorf("network %q: %w", network, ErrNotFound)
	}

	n := nets[0]
	if n.Mask < 0 || n.Mask > 30 {
		return "", fmt.Errorf("network %q (/%d): %w", network, n.Mask, ErrNoFreeAddress)
	}
	if offset < 1 {
		offset = 1
	}

	hostBits := uint32(32 - n.Mask)
	base := n.IP &^ (1<<hostBits - 1)
	broadcast := base | (1<<hostBits - 1)
	if uint64(base)+uint64(offset) >= uint64(broadcast) {
		return "", fmt.Errorf("network %q: %w", network, ErrNoFreeAddress)
	}
	first := base + uint32(offset)
	last := broadcast - 1

	var used []IPv4Allocation
	err = s.db.WithContext(ctx).
		Raw("SELECT ip FROM IPv4Allocation WHERE ip BETWEEN ? AND ? UNION SELECT ip FROM IPv4Address WHERE ip BETWEEN ? AND ? AND reserved = ?",
			first, last, first, last, "yes").
		Scan(&used).Error
	if err != nil {
		return "", queryErr("list used addresses", err)
	}

	taken := make([]uint32, 0, len(used))
	for _, u := range used {
		taken = append(taken, u.IP)
	}
	sort.Slice(taken, func(i, j int) bool { return taken[i] < taken[j] })

	candidate := first
	for _, t := range taken {
		if t < candidate {
			continue
		}
		if t > candidate {
			break
		}
		if candidate == last {
			return "", fmt.Errorf("network %q: %w", network, ErrNoFreeAddress)
		}
		candidate++
	}
	return utils.IntToIP(candidate), nil
}
