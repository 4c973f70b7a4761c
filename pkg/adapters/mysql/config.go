package mysql

import (
	"net"
	"strconv"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/leapmeta/pkg/adapter"
)

// Params holds MySQL-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Collation for the connection (e.g., "utf8mb4_0900_ai_ci")
	Collation string `mapstructure:"collation"`

	// TLS is "true", "false", "skip-verify", "preferred", or a registered config name
	TLS string `mapstructure:"tls"`

	// Timeout bounds dialing (e.g., "5s")
	Timeout time.Duration `mapstructure:"timeout"`

	// ReadTimeout and WriteTimeout bound socket I/O
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func parseParams(params map[string]any) (*Params, error) {
	p := &Params{}
	if err := adapter.DecodeParams(params, p); err != nil {
		return nil, err
	}
	return p, nil
}

// buildDSN constructs a go-sql-driver DSN. Dates are always decoded into
// time.Time so the generic marshaller sees typed values.
func buildDSN(cfg adapter.Config, p *Params) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysqldrv.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true

	if p != nil {
		mc.Collation = p.Collation
		mc.TLSConfig = p.TLS
		mc.Timeout = p.Timeout
		mc.ReadTimeout = p.ReadTimeout
		mc.WriteTimeout = p.WriteTimeout
	}
	if len(cfg.Options) > 0 {
		mc.Params = make(map[string]string, len(cfg.Options))
		for k, v := range cfg.Options {
			mc.Params[k] = v
		}
	}

	return mc.FormatDSN()
}
