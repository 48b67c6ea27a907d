package inventory

import (
	"context"
	"errors"
	"testing"

	"rackops/core/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func ipInt(t *testing.T, ip string) uint32 {
	n, err := utils.IPToInt(ip)
	require.NoError(t, err)
	return n
}

func expectServers(mock sqlmock.Sqlmock) {
	rows := sqlmock.NewRows([]string{"id", "name", "objtype_id"}).
		AddRow(1, "db01", 4).
		AddRow(2, "old01", 4).
		AddRow(3, "spare01", 4).
		AddRow(4, "vm01", 1504).
		AddRow(5, "off01", 1504).
		AddRow(6, nil, 4)
	mock.ExpectQuery("SELECT id, name, objtype_id FROM Object WHERE objtype_id IN").
		WithArgs(4, 1504).
		WillReturnRows(rows)
}

func TestActiveServers(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	expectServers(mock)
	mock.ExpectQuery("SELECT ts.entity_id AS object_id, tt.tag FROM TagStorage").
		WithArgs("object").
		WillReturnRows(sqlmock.NewRows([]string{"object_id", "tag"}).
			AddRow(1, "database").
			AddRow(2, "retired").
			AddRow(3, "free").
			AddRow(4, "to be retired"))
	mock.ExpectQuery("SELECT object_id FROM AttributeValue WHERE attr_id = \\? AND uint_value = \\?").
		WithArgs(10010, 50053).
		WillReturnRows(sqlmock.NewRows([]string{"object_id"}).AddRow(5))

	machines, err := store.ActiveServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Machine{{ID: 1, Name: "db01", Type: ObjectTypeServer}}, machines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveServers_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("SELECT id, name, objtype_id FROM Object").WillReturnError(errors.New("connection reset"))

	machines, err := store.ActiveServers(context.Background())
	assert.Nil(t, machines)
	assert.ErrorIs(t, err, ErrQuery)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFilterActive(t *testing.T) {
	machines := []Machine{
		{ID: 1, Name: "web01"},
		{ID: 2, Name: "web02"},
		{ID: 3, Name: "web03"},
		{ID: 4, Name: ""},
	}
	tags := map[int][]string{2: {"retired"}}
	off := map[int]bool{3: true}

	active := filterActive(machines, tags, off)
	assert.Equal(t, []Machine{{ID: 1, Name: "web01"}}, active)

	t.Run("retired but running is excluded", func(t *testing.T) {
		active := filterActive([]Machine{{ID: 9, Name: "old"}}, map[int][]string{9: {"web", "retired"}}, nil)
		assert.Empty(t, active)
	})
}

func TestFilterByName(t *testing.T) {
	machines := []Machine{{ID: 1, Name: "db01"}, {ID: 2, Name: "web01"}, {ID: 3, Name: "vm01"}, {ID: 4, Name: "old-db02"}}

	re, err := NamePattern("db|vm")
	require.NoError(t, err)
	matched := FilterByName(machines, re)
	require.Len(t, matched, 2)
	assert.Equal(t, "db01", matched[0].Name)
	assert.Equal(t, "vm01", matched[1].Name)

	assert.Equal(t, machines, FilterByName(machines, nil))
	assert.Empty(t, FilterByName(nil, re))
}

func TestRecordedIPs(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("SELECT object_id, ip, name, type FROM IPv4Allocation WHERE object_id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"object_id", "ip", "name", "type"}).
			AddRow(7, ipInt(t, "10.0.0.5"), "eth0", "regular").
			AddRow(7, ipInt(t, "10.0.0.6"), "eth0", "shared").
			AddRow(7, ipInt(t, "192.168.1.2"), "eth1", "regular"))

	ips, err := store.RecordedIPs(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"eth0": {"10.0.0.5", "10.0.0.6"},
		"eth1": {"192.168.1.2"},
	}, ips)
}

func TestRecordedIPs_EmptyIsNotError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM IPv4Allocation").WillReturnRows(sqlmock.NewRows([]string{"object_id", "ip", "name", "type"}))

	ips, err := store.RecordedIPs(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, ips)
	assert.Empty(t, ips)
}

func TestRecordedInterfaces(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("SELECT id, object_id, name, l2address FROM Port WHERE object_id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "object_id", "name", "l2address"}).
			AddRow(1, 7, "eth0", "00:25:90:ab:cd:ef").
			AddRow(2, 7, "eth1", nil))

	ports, err := store.RecordedInterfaces(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"eth0": "002590ABCDEF", "eth1": utils.SentinelMAC}, ports)
}

func TestFindAllocation(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM IPv4Allocation a LEFT JOIN Object o").
		WithArgs(ipInt(t, "10.0.0.5")).
		WillReturnRows(sqlmock.NewRows([]string{"object_id", "object_name", "name", "type", "ip"}).
			AddRow(3, "web03", "eth0", "regular", ipInt(t, "10.0.0.5")))

	allocs, err := store.FindAllocation(context.Background(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, []Allocation{{IP: "10.0.0.5", MachineID: 3, MachineName: "web03", Interface: "eth0", Kind: AllocationRegular}}, allocs)

	_, err = store.FindAllocation(context.Background(), "not-an-ip")
	assert.Error(t, err)
}

func TestAllocate(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectExec("INSERT INTO IPv4Allocation").
		WithArgs(7, ipInt(t, "10.0.0.5"), "eth0", "regular").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Allocate(context.Background(), "10.0.0.5", 7, "eth0", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocate_Error(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectExec("INSERT INTO IPv4Allocation").WillReturnError(errors.New("duplicate"))

	err := store.Allocate(context.Background(), "10.0.0.5", 7, "eth0", AllocationShared)
	assert.ErrorIs(t, err, ErrQuery)
}

func TestOSVersion(t *testing.T) {
	tests := []struct {
		name string
		rows *sqlmock.Rows
		want OSVersion
	}{
		{
			name: "absent",
			rows: sqlmock.NewRows([]string{"object_id", "attr_id", "uint_value"}),
			want: OSVersion{},
		},
		{
			name: "wheezy",
			rows: sqlmock.NewRows([]string{"object_id", "attr_id", "uint_value"}).AddRow(7, 4, 1709),
			want: OSVersion{Present: true, Symbol: "7", Key: 1709},
		},
		{
			name: "unmapped key",
			rows: sqlmock.NewRows([]string{"object_id", "attr_id", "uint_value"}).AddRow(7, 4, 2000),
			want: OSVersion{Present: true, Key: 2000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			store := New(db)

			mock.ExpectQuery("SELECT object_id, attr_id, uint_value FROM AttributeValue").
				WithArgs(7, 4).
				WillReturnRows(tt.rows)

			got, err := store.OSVersion(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetOSVersion(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectExec("INSERT INTO AttributeValue .* ON DUPLICATE KEY UPDATE").
		WithArgs(7, 1504, 4, 1395).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetOSVersion(context.Background(), Machine{ID: 7, Name: "vm07", Type: ObjectTypeVM}, "6")
	require.NoError(t, err)

	err = store.SetOSVersion(context.Background(), Machine{ID: 7}, "9")
	assert.ErrorIs(t, err, ErrUnknownOSVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasTag(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM TagStorage").WithArgs("object", 5).
		WillReturnRows(sqlmock.NewRows([]string{"object_id", "tag"}).AddRow(5, "retired"))

	ok, err := store.HasTag(context.Background(), 5, TagRetired)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDictionaryValue(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("JOIN Dictionary d").WithArgs(5, 2).
		WillReturnRows(sqlmock.NewRows([]string{"dict_key", "dict_value"}).AddRow(1200, "Dell PowerEdge%GPASS%R610"))

	model, err := store.DictionaryValue(context.Background(), 5, AttrHWType)
	require.NoError(t, err)
	assert.Equal(t, "Dell PowerEdge R610", model)
}

func TestFreeIP(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM IPv4Network WHERE name = \\?").WithArgs("Backend").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ip", "mask", "name"}).AddRow(1, ipInt(t, "10.1.0.0"), 24, "Backend"))
	mock.ExpectQuery("SELECT ip FROM IPv4Allocation WHERE ip BETWEEN").
		WithArgs(ipInt(t, "10.1.0.205"), ipInt(t, "10.1.0.254"), ipInt(t, "10.1.0.205"), ipInt(t, "10.1.0.254"), "yes").
		WillReturnRows(sqlmock.NewRows([]string{"ip"}).
			AddRow(ipInt(t, "10.1.0.206")).
			AddRow(ipInt(t, "10.1.0.205")).
			AddRow(ipInt(t, "10.1.0.208")))

	ip, err := store.FreeIP(context.Background(), "Backend", 205)
	require.NoError(t, err)
	assert.Equal(t, "10.1.0.207", ip)
}

func TestFreeIP_UnknownNetwork(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM IPv4Network").WillReturnRows(sqlmock.NewRows([]string{"id", "ip", "mask", "name"}))

	_, err := store.FreeIP(context.Background(), "Nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFreeIP_Exhausted(t *testing.T) {
	db, mock := setupMockDB(t)
	store := New(db)

	mock.ExpectQuery("FROM IPv4Network").
		WillReturnRows(sqlmock.NewRows([]string{"id", "ip", "mask", "name"}).AddRow(1, ipInt(t, "10.2.0.0"), 30, "Tiny"))
	mock.ExpectQuery("SELECT ip FROM IPv4Allocation").
		WillReturnRows(sqlmock.NewRows([]string{"ip"}).AddRow(ipInt(t, "10.2.0.1")).AddRow(ipInt(t, "10.2.0.2")))

	_, err := store.FreeIP(context.Background(), "Tiny", 1)
	assert.ErrorIs(t, err, ErrNoFreeAddress)
}

func TestNamePattern(t *testing.T) {
	re, err := NamePattern("web")
	require.NoError(t, err)
	assert.True(t, re.MatchString("web-01"))
	assert.False(t, re.MatchString("old-web-01"), "patterns match from the start of the name")

	re, err = NamePattern("db|vm")
	require.NoError(t, err)
	assert.True(t, re.MatchString("vm-01"))
	assert.False(t, re.MatchString("xvm"))
}
