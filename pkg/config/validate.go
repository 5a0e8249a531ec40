package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Validate checks the storage section beyond its tags.
func (d *DBConfig) Validate() error {
	if err := valid.Struct(d); err != nil {
		return err
	}
	// sqlite only needs a file path in DB; mysql needs a reachable address
	if d.Driver == "mysql" {
		if strings.TrimSpace(d.Host) == "" {
			return errors.New("db.host cannot be empty for driver mysql")
		}
		if d.Port == 0 {
			return errors.New("db.port cannot be 0 for driver mysql")
		}
	}
	return nil
}

// Validate checks the sampling section.
func (m *MonitorConfig) Validate() error {
	if err := valid.Struct(m); err != nil {
		return err
	}
	if strings.TrimSpace(m.ComponentID) == "" {
		return errors.New("nmd.component-id cannot be blank")
	}
	if !m.Sensors.CPULoad && !m.Sensors.DiskSpace && !m.Sensors.Uptime {
		return errors.New("at least one sensor family must be enabled (cpu-load/disk-space/uptime)")
	}
	return nil
}

// Validate checks the listen address only when the server is enabled.
func (s *ServerConfig) Validate() error {
	if !s.Enable {
		return nil
	}
	if s.Addr == "" {
		return errors.New("server.addr cannot be empty when server.enable is true")
	}
	if _, err := net.ResolveTCPAddr("tcp", s.Addr); err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", s.Addr, err)
	}
	return nil
}

// Validate checks the log section and makes sure the file directory is usable.
func (l *ZapLogConfig) Validate() error {
	if err := valid.Struct(l); err != nil {
		return fmt.Errorf("log config invalid: %w", err)
	}
	if strings.TrimSpace(l.Path) == "" {
		return nil
	}
	abs, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("log.path cannot be resolved, got %s: %w", l.Path, err)
	}
	if err := ensureDir(abs); err != nil {
		return fmt.Errorf("log.path is not a writable directory, got %s: %w", l.Path, err)
	}
	return nil
}

func ensureDir(path string) error {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
