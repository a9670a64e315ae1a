package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const BonusFactsSchema = `
	CREATE TABLE IF NOT EXISTS bonus_facts (
		salon_id VARCHAR NOT NULL,
		supplier_id VARCHAR NOT NULL,
		period VARCHAR NOT NULL,
		total_turnover DOUBLE NOT NULL DEFAULT 0,
		loyalty_bonus_amount DOUBLE NOT NULL DEFAULT 0,
		details VARCHAR
	);
`

const BaselineOverridesSchema = `
	CREATE TABLE IF NOT EXISTS baseline_overrides (
		salon_id VARCHAR NOT NULL,
		supplier_id VARCHAR NOT NULL,
		year INTEGER NOT NULL,
		override_turnover DOUBLE NOT NULL,
		reason VARCHAR,
		PRIMARY KEY (salon_id, supplier_id, year)
	);
`

const SalonsSchema = `
	CREATE TABLE IF NOT EXISTS salons (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL
	);
`

const SuppliersSchema = `
	CREATE TABLE IF NOT EXISTS suppliers (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL
	);
`

var bootQueries = []string{
	BonusFactsSchema,
	BaselineOverridesSchema,
	SalonsSchema,
	SuppliersSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = 4
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
