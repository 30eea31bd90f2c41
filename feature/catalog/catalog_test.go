package catalog

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"transit-catalog/core/database"
	"transit-catalog/feature/gtfs/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	jan = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func setupCatalog(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(models.All()...))

	agencies := []models.Agency{
		{AID: 1, OrigID: 100, AgencyName: "ACME", ActiveFrom: jan, ActiveUntil: &feb},
		{AID: 2, OrigID: 100, AgencyName: "ACME Corp", ActiveFrom: feb},
		{AID: 3, OrigID: 200, AgencyName: "Beta", ActiveFrom: jan},
	}
	require.NoError(t, db.Create(&agencies).Error)
	require.NoError(t, db.Create(&models.ImportFile{
		RunID: "run-1", FileName: "feed.zip", FileDate: feb, ImportedOn: feb,
		Status: models.ImportCompleted, Summary: datatypes.JSON(`{}`),
	}).Error)
	return db
}

func setupTestApp(t *testing.T) (*fiber.App, *Service) {
	db := setupCatalog(t)
	svc := NewService(db, time.Minute, zap.NewNop())
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, svc
}

func ids(rows []Row, column string) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[column].(int64))
	}
	return out
}

func TestService_Active(t *testing.T) {
	_, svc := setupTestApp(t)

	rows, err := svc.Active(context.Background(), "agency")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(rows, "a_id"))

	_, err = svc.Active(context.Background(), "trip")
	assert.Error(t, err)
}

func TestService_AsOf(t *testing.T) {
	_, svc := setupTestApp(t)

	rows, err := svc.AsOf(context.Background(), "agency", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(rows, "a_id"))

	rows, err = svc.AsOf(context.Background(), "agency", feb)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids(rows, "a_id"))

	rows, err = svc.AsOf(context.Background(), "agency", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestService_History(t *testing.T) {
	_, svc := setupTestApp(t)

	history, err := svc.History(context.Background(), "agency", 2)
	require.NoError(t, err)
	assert.Equal(t, "100", history.NaturalKey)
	assert.Equal(t, []int64{1, 2}, ids(history.Versions, "a_id"))

	_, err = svc.History(context.Background(), "agency", 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandleList(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog/agency", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Entity string           `json:"entity"`
		Count  int              `json:"count"`
		Rows   []map[string]any `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "agency", body.Entity)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "ACME Corp", body.Rows[0]["agency_name"])

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/agency?at=2024-01-15", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ACME", body.Rows[0]["agency_name"])
}

func TestHandleList_BadRequests(t *testing.T) {
	app, _ := setupTestApp(t)

	for _, path := range []string{"/catalog/trip", "/catalog/agency?at=15-01-2024", "/catalog/agency/abc"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestHandleHistory(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/catalog/agency/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var history History
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Len(t, history.Versions, 2)

	resp, err = app.Test(httptest.NewRequest("GET", "/catalog/agency/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleImports(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/imports?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var files []models.ImportFile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&files))
	require.Len(t, files, 1)
	assert.Equal(t, "run-1", files[0].RunID)
}

func TestLoader(t *testing.T) {
	feature := NewFeature(nil, time.Minute, zap.NewNop())
	assert.Equal(t, "catalog", feature.Name())
	assert.False(t, feature.IsEnabled())

	enabled := NewFeature(setupCatalog(t), time.Minute, zap.NewNop())
	assert.True(t, enabled.IsEnabled())
	assert.NoError(t, enabled.Load(fiber.New()))
}
