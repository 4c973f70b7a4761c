// Package logging builds the CLI logger: a text handler on stderr, plus an
// optional Seq sink when a server URL is configured.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

// Options configures the CLI logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Verbose forces the debug level.
	Verbose bool
	// SeqURL enables the Seq sink when set.
	SeqURL string
	// SeqFlushInterval is how often buffered Seq events are sent.
	SeqFlushInterval time.Duration
}

// multiHandler forwards log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a logger writing text records to w and, when opts.SeqURL is
// set, to Seq. The returned function flushes and closes the Seq sink.
func New(w io.Writer, opts Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	console := slog.NewTextHandler(w, handlerOpts)

	if opts.SeqURL == "" {
		return slog.New(console), func() {}, nil
	}

	flush := opts.SeqFlushInterval
	if flush <= 0 {
		flush = 500 * time.Millisecond
	}

	_, seqHandler := slogseq.NewLogger(
		opts.SeqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(flush),
		slogseq.WithHandlerOptions(handlerOpts),
	)

	// Seq unavailable: console only
	if seqHandler == nil {
		return slog.New(console), func() {}, nil
	}

	multi := &multiHandler{
		handlers: []slog.Handler{console, seqHandler},
	}

	closeFn := func() {
		seqHandler.Close()
	}

	return slog.New(multi), closeFn, nil
}
