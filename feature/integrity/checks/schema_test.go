package checks

import (
	"testing"

	"transit-catalog/core/database"
	"transit-catalog/feature/gtfs/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

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

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_Migrated(t *testing.T) {
	db := setupSQLite(t)

	report, err := CheckSchema(db)
	require.NoError(t, err)
	assert.True(t, report.Matched)
	assert.Equal(t, "sqlite", report.Driver)
	assert.Len(t, report.Tables, 4)
	for table, tbl := range report.Tables {
		assert.Equal(t, "ok", tbl.Status, table)
		assert.Empty(t, tbl.MissingColumns, table)
	}
}

func TestCheckSchema_MissingTable(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Migrator().DropTable(&models.Stop{}))

	report, err := CheckSchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	tbl := report.Tables["igtfs_stops"]
	assert.Equal(t, "missing", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "code")
	assert.Equal(t, "ok", report.Tables["igtfs_agencies"].Status)
}

func TestCheckSchema_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("a_id", "bigint", "NO", "PRI", nil, "").
		AddRow("orig_id", "bigint", "YES", "MUL", nil, "").
		AddRow("agency_name", "int(11)", "YES", "", nil, "").
		AddRow("active_from", "date", "YES", "", nil, "").
		AddRow("active_until", "date", "YES", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `igtfs_agencies`").WillReturnRows(rows)
	mock.ExpectQuery("SHOW COLUMNS FROM `igtfs_routes`").WillReturnError(assert.AnError)
	mock.ExpectQuery("SHOW COLUMNS FROM `igtfs_stops`").WillReturnError(assert.AnError)
	mock.ExpectQuery("SHOW COLUMNS FROM `igtfs_files`").WillReturnError(assert.AnError)

	report, err := CheckSchema(db)
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 3)

	tbl := report.Tables["igtfs_agencies"]
	assert.Equal(t, "error", tbl.Status)
	assert.Empty(t, tbl.MissingColumns)
	assert.Equal(t, []string{"agency_name: expected varchar(255), got int(11)"}, tbl.TypeMismatches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTypeFamily(t *testing.T) {
	assert.Equal(t, "text", typeFamily("character varying"))
	assert.Equal(t, "text", typeFamily("varchar(64)"))
	assert.Equal(t, "date", typeFamily("date"))
	assert.Equal(t, "time", typeFamily("datetime(3)"))
	assert.Equal(t, "time", typeFamily("timestamp with time zone"))
	assert.Equal(t, "int", typeFamily("bigint"))
	assert.Equal(t, "json", typeFamily("jsonb"))
	assert.Equal(t, "", typeFamily("numeric"))
}

func TestParseGormTag(t *testing.T) {
	tag := "primaryKey;column:s_id;type:varchar(64)"
	assert.Equal(t, "s_id", parseGormColumn(tag))
	assert.Equal(t, "varchar(64)", parseGormType(tag))
	assert.Equal(t, "", parseGormColumn("index"))
}
