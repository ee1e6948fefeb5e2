// internal/config/database.go
package config

import (
	"fmt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// ConnString returns the driver specific connection string. An explicit
// DB_DSN always wins; for MySQL it must carry loc=UTC (and parseTime=True)
// or stored timestamps are written in another zone.
func (d *DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}

	switch d.Driver {
	case DriverPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, port, d.User, d.Password, d.Database, d.SSLMode,
		)
	case DriverMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, port, d.Database,
		)
	default:
		return "data/app.db"
	}
}
