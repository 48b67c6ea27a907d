package inventory

// ObjectType is the Racktables objtype_id of an object.
type ObjectType int

const (
	ObjectTypeServer ObjectType = 4
	ObjectTypeVM     ObjectType = 1504
)

// String returns "physical" or "virtual".
func (t ObjectType) String() string {
	switch t {
	case ObjectTypeServer:
		return "physical"
	case ObjectTypeVM:
		return "virtual"
	default:
		return "unknown"
	}
}

// Attribute is a Racktables attr_id.
type Attribute int

const (
	AttrOEMSerial     Attribute = 1
	AttrHWType        Attribute = 2
	AttrOSRelease     Attribute = 4
	AttrSupportEnd    Attribute = 21
	AttrHWWarrantyEnd Attribute = 22
	AttrPowerState    Attribute = 10010
)

// PowerStateOff is the dictionary value of AttrPowerState for a powered off machine.
const PowerStateOff uint32 = 50053

// InactiveTags are the tags that exclude a machine from the active set.
var InactiveTags = []string{"free", "retired", "to be retired"}

// TagRetired marks decommissioned hardware.
const TagRetired = "retired"

// OSReleases maps the first character of /etc/debian_version to the
// dictionary key stored in AttrOSRelease.
var OSReleases = map[string]uint32{
	"7": 1709, // wheezy
	"6": 1395, // squeeze
	"5": 954,  // lenny
}

// AllocationKind is the type column of IPv4Allocation.
type AllocationKind string

const (
	AllocationRegular AllocationKind = "regular"
	AllocationShared  AllocationKind = "shared"
	AllocationVirtual AllocationKind = "virtual"
)

// osSymbol returns the release symbol for a dictionary key.
func osSymbol(key uint32) (string, bool) {
	for symbol, k := range OSReleases {
		if k == key {
			return symbol, true
		}
	}
	return "", false
}
