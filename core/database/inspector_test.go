package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGetTableColumns(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("object_id", "INT(10) UNSIGNED", "NO", "PRI", nil, "").
		AddRow("IP", "INT(10) UNSIGNED", "NO", "PRI", nil, "").
		AddRow("name", "CHAR(255)", "NO", "", "", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `IPv4Allocation`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "IPv4Allocation")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "object_id", columns[0].Field)
	assert.Equal(t, "int(10) unsigned", columns[0].Type)
	assert.Equal(t, "ip", columns[1].Field)
	assert.Nil(t, columns[1].Default)
}

func TestGetTableColumns_Error(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SHOW COLUMNS FROM `Nope`").WillReturnError(errors.New("Table 'racktables.Nope' doesn't exist"))

	columns, err := GetTableColumns(db, "Nope")
	assert.Error(t, err)
	assert.Nil(t, columns)
	assert.Contains(t, err.Error(), "Nope")
}
