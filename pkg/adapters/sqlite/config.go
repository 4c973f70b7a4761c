package sqlite

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/leapstack-labs/leapmeta/pkg/adapter"
)

// Params holds SQLite-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// Pragmas applied to every new connection (e.g., journal_mode: wal)
	Pragmas map[string]string `mapstructure:"pragmas"`

	// BusyTimeout waits for locks instead of failing with SQLITE_BUSY
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

func parseParams(params map[string]any) (*Params, error) {
	p := &Params{}
	if err := adapter.DecodeParams(params, p); err != nil {
		return nil, err
	}
	return p, nil
}

// buildDSN appends connection pragmas to the database path in the form the
// modernc driver reads them: _pragma=name(value).
func buildDSN(path string, p *Params) string {
	if path == "" {
		path = ":memory:"
	}

	q := url.Values{}
	if p.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", p.BusyTimeout.Milliseconds()))
	}

	names := make([]string, 0, len(p.Pragmas))
	for name := range p.Pragmas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q.Add("_pragma", fmt.Sprintf("%s(%s)", name, p.Pragmas[name]))
	}

	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
