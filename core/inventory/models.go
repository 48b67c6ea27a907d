package inventory

// The models mirror the parts of the Racktables schema this tool reads or
// writes. They are used both to scan query results and by the schema check.

type Object struct {
	ID        int     `gorm:"column:id;primaryKey"`
	Name      *string `gorm:"column:name"`
	Label     *string `gorm:"column:label"`
	ObjtypeID int     `gorm:"column:objtype_id"`
	AssetNo   *string `gorm:"column:asset_no"`
}

func (Object) TableName() string { return "Object" }

type TagTree struct {
	ID       int    `gorm:"column:id;primaryKey"`
	ParentID *int   `gorm:"column:parent_id"`
	Tag      string `gorm:"column:tag"`
}

func (TagTree) TableName() string { return "TagTree" }

type TagStorage struct {
	EntityRealm string `gorm:"column:entity_realm;type:enum('file','location','object','ipv4net','ipv6net','ipv4vs','ipv4rspool','rack','row','user')"`
	EntityID    int    `gorm:"column:entity_id"`
	TagID       int    `gorm:"column:tag_id"`
}

func (TagStorage) TableName() string { return "TagStorage" }

type AttributeValue struct {
	ObjectID    int      `gorm:"column:object_id;primaryKey"`
	ObjectTID   int      `gorm:"column:object_tid"`
	AttrID      int      `gorm:"column:attr_id;primaryKey"`
	StringValue *string  `gorm:"column:string_value"`
	UintValue   *uint32  `gorm:"column:uint_value"`
	FloatValue  *float64 `gorm:"column:float_value"`
}

func (AttributeValue) TableName() string { return "AttributeValue" }

type IPv4Allocation struct {
	ObjectID int    `gorm:"column:object_id"`
	IP       uint32 `gorm:"column:ip"`
	Name     string `gorm:"column:name"`
	Type     string `gorm:"column:type;type:enum('regular','shared','virtual','router')"`
}

func (IPv4Allocation) TableName() string { return "IPv4Allocation" }

type IPv4Address struct {
	IP       uint32 `gorm:"column:ip;primaryKey"`
	Name     string `gorm:"column:name"`
	Reserved string `gorm:"column:reserved;type:enum('yes','no')"`
}

func (IPv4Address) TableName() string { return "IPv4Address" }

type IPv4Network struct {
	ID   int    `gorm:"column:id;primaryKey"`
	IP   uint32 `gorm:"column:ip"`
	Mask int    `gorm:"column:mask"`
	Name string `gorm:"column:name"`
}

func (IPv4Network) TableName() string { return "IPv4Network" }

type Port struct {
	ID        int     `gorm:"column:id;primaryKey"`
	ObjectID  int     `gorm:"column:object_id"`
	Name      string  `gorm:"column:name"`
	L2Address *string `gorm:"column:l2address"`
}

func (Port) TableName() string { return "Port" }

type Dictionary struct {
	DictKey   uint32 `gorm:"column:dict_key;primaryKey"`
	DictValue string `gorm:"column:dict_value"`
}

func (Dictionary) TableName() string { return "Dictionary" }

// Models lists every model the tool depends on.
func Models() []any {
	return []any{
		Object{}, TagTree{}, TagStorage{}, AttributeValue{},
		IPv4Allocation{}, IPv4Address{}, IPv4Network{}, Port{}, Dictionary{},
	}
}
