// Package editord serves the network editor as a JSON API over HTTP.
package editord

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/rs/zerolog"
)

// DefaultPort is used when neither options nor config name a port.
const DefaultPort = 8765

// Options configure the daemon runtime.
type Options struct {
	Hostname string
	Port     int
	Version  string

	// State seeds the editor, e.g. from a network file given on the
	// command line.
	State *state.AppState

	// Starters overrides the built-in starter networks.
	Starters []*starters.Starter
}

// Daemon is the long-running editor API process.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options

	server     *Server
	httpServer *http.Server
}

// New constructs a daemon with the provided configuration.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = cfg.Server.Host
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = cfg.Server.Port
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	server := NewServer(logger,
		WithVersion(opts.Version),
		WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		WithDefaults(models.LLMConfig{
			ModelName:   models.ResolveModelName(cfg.Editor.DefaultModel),
			Temperature: cfg.Editor.Temperature,
		}),
		WithState(opts.State),
		WithStarters(opts.Starters),
	)

	d := &Daemon{
		cfg:    cfg,
		logger: logger,
		opts:   opts,
		server: server,
	}
	d.httpServer = &http.Server{
		Addr:              d.bindAddr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return d, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	bindAddr := d.bindAddr()
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}

	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Msg("editord starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("editord shutting down...")
		timeout := d.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	d.logger.Info().Msg("editord shutdown complete")
	return nil
}

func (d *Daemon) bindAddr() string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(d.opts.Port))
}

// Server returns the underlying API server.
// Useful for testing.
func (d *Daemon) Server() *Server {
	return d.server
}
