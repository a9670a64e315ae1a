package config

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/databricks/databricks-sql-go"
	dbcfg "github.com/databricks/databricks-sdk-go/config"
	"github.com/de-tools/bonus-atlas/pkg/store/duckdb"
	"github.com/huandu/go-sqlbuilder"
	sf "github.com/snowflakedb/gosnowflake"
)

const defaultHttpPath = "/sql/1.0/warehouses/warehouse"

// Connection is an open data source together with the SQL dialect the
// stores must build queries in.
type Connection struct {
	DB     *sql.DB
	Flavor sqlbuilder.Flavor
	// Local stores accept writes (ingestion, overrides).
	Local bool
}

func Open(p *Profile) (*Connection, error) {
	switch p.Type {
	case ProfileDuckDB:
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: p.Path, Threads: p.Threads})
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb profile %s: %w", p.Name, err)
		}
		return &Connection{DB: db, Flavor: sqlbuilder.SQLite, Local: true}, nil

	case ProfileDatabricks:
		dsn, err := DatabricksDSN(p)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("databricks", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Databricks: %w", err)
		}
		return &Connection{DB: db, Flavor: sqlbuilder.MySQL}, nil

	case ProfileSnowflake:
		dsn, err := sf.DSN(SnowflakeConfig(p))
		if err != nil {
			return nil, fmt.Errorf("failed to create snowflake DSN: %w", err)
		}
		db, err := sql.Open("snowflake", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
		}
		return &Connection{DB: db, Flavor: sqlbuilder.MySQL}, nil
	}
	return nil, fmt.Errorf("unsupported profile type %q", p.Type)
}

// DatabricksConfig maps a profile onto the Databricks SDK configuration.
func DatabricksConfig(p *Profile) *dbcfg.Config {
	return &dbcfg.Config{
		Profile: p.Name,
		Host:    p.Host,
		Token:   p.Token,
	}
}

func DatabricksDSN(p *Profile) (string, error) {
	cfg := DatabricksConfig(p)
	if cfg.Host == "" || cfg.Token == "" {
		return "", fmt.Errorf("databricks profile %s requires host and token", p.Name)
	}

	httpPath := p.HTTPPath
	if httpPath == "" {
		httpPath = defaultHttpPath
	}
	dsn := fmt.Sprintf("token:%s@%s%s", cfg.Token, cfg.Host, httpPath)

	params := url.Values{}
	if p.Catalog != "" {
		params.Set("catalog", p.Catalog)
	}
	if p.Schema != "" {
		params.Set("schema", p.Schema)
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn, nil
}

func SnowflakeConfig(p *Profile) *sf.Config {
	return &sf.Config{
		Account:   p.Account,
		User:      p.User,
		Password:  p.Password,
		Database:  p.Database,
		Schema:    p.Schema,
		Warehouse: p.Warehouse,
		Role:      p.Role,
	}
}
