package storage

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/nmd-agent/pkg/config"
)

// OpenFunc returns a lazily connected handle; Connector pings it.
type OpenFunc func(cfg config.DBConfig) (*sql.DB, error)

// Open builds a handle for cfg.Driver: MariaDB/MySQL over TCP, or a local sqlite file.
func Open(cfg config.DBConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.DB
		mc.Timeout = cfg.DialTimeout()
		connector, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil
	case "sqlite":
		db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.DB))
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Target describes cfg for logs without the password.
func Target(cfg config.DBConfig) string {
	if cfg.Driver == "sqlite" {
		return "sqlite:" + cfg.DB
	}
	return fmt.Sprintf("%s:%s/%s", cfg.Driver, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), cfg.DB)
}
