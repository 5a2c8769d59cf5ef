package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	_ "modernc.org/sqlite"

	"ecovalley"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var openDB = sql.Open

// OpenSQLite loads the catalog from table in the SQLite database at path.
func OpenSQLite(ctx context.Context, path, table string) (*Catalog, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, ecovalley.Initialization("open catalog database", err)
	}
	defer db.Close()

	return LoadSQLite(ctx, db, table)
}

// LoadSQLite reads every row of table. Ratings may be NULL and then count as
// unknown.
func LoadSQLite(ctx context.Context, db *sql.DB, table string) (*Catalog, error) {
	if !tableName.MatchString(table) {
		return nil, ecovalley.Initialization("load catalog", fmt.Errorf("invalid table name %q", table))
	}

	query := fmt.Sprintf(`SELECT material_name, energy_per_kg, carbon_per_kg, water_per_kg, cost_per_kg, recyclability, biodegradability FROM %s ORDER BY rowid`, table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, ecovalley.Initialization("query catalog", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var recycle, biodegrade sql.NullString
		if err := rows.Scan(&r.Name, &r.EnergyPerKg, &r.CarbonPerKg, &r.WaterPerKg, &r.CostPerKg, &recycle, &biodegrade); err != nil {
			return nil, ecovalley.Initialization("scan catalog row", err)
		}
		r.Recyclability = Rating(recycle.String)
		r.Biodegradability = Rating(biodegrade.String)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, ecovalley.Initialization("read catalog rows", err)
	}

	c, err := New(records)
	if err != nil {
		return nil, err
	}

	slog.Info("CATALOG: Loaded", "materials", c.Len(), "source", "sqlite", "table", table)
	return c, nil
}
