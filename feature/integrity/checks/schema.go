package checks

import (
	"fmt"
	"reflect"
	"strings"

	"colabdraw/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a scene table check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckSchema verifies the scene table using database.SceneDocument as the
// source of truth.
func CheckSchema(db *gorm.DB, table string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Table:          table,
		Matched:        true,
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Errors:         []string{},
	}

	actualCols, err := database.GetTableColumns(db, table)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table, err))
		report.Matched = false
		return report, nil
	}

	model := reflect.TypeOf(database.SceneDocument{})
	required := make([]string, 0, model.NumField())
	expected := make(map[string]string, model.NumField())
	for i := 0; i < model.NumField(); i++ {
		gormTag := model.Field(i).Tag.Get("gorm")
		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}
		required = append(required, colName)
		expected[colName] = strings.ToLower(parseGormType(gormTag))
	}

	report.MissingColumns = database.MissingColumns(actualCols, required)
	if len(report.MissingColumns) > 0 {
		report.Matched = false
	}

	// Only present columns with an explicit type are compared.
	for _, col := range actualCols {
		expType, ok := expected[col.Field]
		if !ok || expType == "" {
			continue
		}
		if !strings.Contains(col.Type, expType) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", col.Field, expType, col.Type))
			report.Matched = false
		}
	}

	return report, nil
}

func parseGormColumn(tag string) string {
	return parseGormKey(tag, "column:")
}

func parseGormType(tag string) string {
	return parseGormKey(tag, "type:")
}

func parseGormKey(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
