package checks

import (
	"fmt"
	"reflect"
	"strings"

	"transit-catalog/core/database"
	"transit-catalog/feature/gtfs/models"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing the catalog tables against the models.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies the catalog schema using the GORM models as the source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
	}

	for _, model := range models.All() {
		typ := reflect.TypeOf(model)
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		tabler, ok := model.(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", typ.Name())
		}
		table := tabler.TableName()

		actual, err := database.GetTableColumns(db, table)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tbl := compareTable(typ, actual)
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[table] = tbl
	}

	return report, nil
}

func compareTable(typ reflect.Type, actual []database.ColumnInfo) TableReport {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}
	if len(actual) == 0 {
		tbl.Status = "missing"
	}

	byName := make(map[string]database.ColumnInfo, len(actual))
	for _, col := range actual {
		byName[col.Field] = col
	}

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(tag)
		if colName == "" {
			continue
		}

		col, exists := byName[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			if tbl.Status == "ok" {
				tbl.Status = "error"
			}
			continue
		}

		expType := strings.ToLower(parseGormType(tag))
		if expType == "" {
			continue
		}
		want, got := typeFamily(expType), typeFamily(col.Type)
		if want == "" || got == "" || want == got {
			continue
		}
		tbl.TypeMismatches = append(tbl.TypeMismatches,
			fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
		tbl.Status = "error"
	}
	return tbl
}

// typeFamily folds driver specific column types into comparable groups.
// Unknown types return "" and are not compared.
func typeFamily(sqlType string) string {
	t := strings.ToLower(sqlType)
	switch {
	case strings.HasPrefix(t, "varchar"), strings.HasPrefix(t, "character"),
		strings.HasPrefix(t, "text"), strings.HasPrefix(t, "char"):
		return "text"
	case strings.HasPrefix(t, "date") && !strings.HasPrefix(t, "datetime"):
		return "date"
	case strings.HasPrefix(t, "datetime"), strings.HasPrefix(t, "timestamp"):
		return "time"
	case strings.HasPrefix(t, "json"):
		return "json"
	case strings.Contains(t, "int"):
		return "int"
	}
	return ""
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
