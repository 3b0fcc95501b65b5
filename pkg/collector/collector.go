// Package collector wires configured endpoints to their file sinks, starts a
// supervisor per endpoint and the shared rotation scheduler.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"wslogger/pkg/config"
	"wslogger/pkg/pipeline"
	"wslogger/pkg/rotation"
	"wslogger/pkg/router"
	"wslogger/pkg/sink"
	"wslogger/pkg/wsclient"
)

// Connection is the immutable per-endpoint setup handed to its supervisor.
type Connection struct {
	URL    string
	Filter router.Filter
	Flags  router.Flags
	File   *sink.RotatingFile
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// WithConsole replaces stdout as the echo destination.
func WithConsole(s sink.Sink) Option {
	return func(c *Collector) { c.console = s }
}

// WithClock replaces time.Now for file naming and rotation.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// WithDialer replaces the gorilla dialer.
func WithDialer(d wsclient.Dialer) Option {
	return func(c *Collector) { c.dialer = d }
}

// WithMirrors adds mirror sinks on top of those configured.
func WithMirrors(s ...sink.Sink) Option {
	return func(c *Collector) { c.mirrors = append(c.mirrors, s...) }
}

// Collector owns every sink and worker of the process.
type Collector struct {
	logger  *slog.Logger
	console sink.Sink
	now     func() time.Time
	dialer  wsclient.Dialer

	files       []*sink.RotatingFile
	mirrors     []sink.Sink
	conns       []Connection
	supervisors []*wsclient.Supervisor
	scheduler   *rotation.Scheduler
}

// New opens today's file for every distinct output location, connects the
// configured mirrors and prepares one supervisor per endpoint. cfg must be
// validated. File-system failures are returned as *sink.PersistError.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Collector, error) {
	c := &Collector{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.console == nil {
		c.console = sink.NewConsoleSink()
	}
	if c.dialer == nil {
		c.dialer = wsclient.GorillaDialer{ReadTimeout: cfg.ReadTimeout}
	}

	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	mirrors, err := openMirrors(ctx, cfg.Mirrors)
	if err != nil {
		return nil, err
	}
	c.mirrors = append(mirrors, c.mirrors...)

	c.scheduler = rotation.NewScheduler(
		rotation.WithClock(c.now),
		rotation.WithInterval(cfg.RotationInterval),
		rotation.WithLogger(c.logger),
	)

	filter := router.NewFilter(cfg.ListenFor)
	flags := router.Flags{PrintAll: cfg.PrintAll, PrintLogged: cfg.PrintLogged}
	byKey := make(map[string]*sink.RotatingFile)
	now := c.now()

	for _, ep := range cfg.Endpoints() {
		file, found := byKey[ep.FileKey()]
		if !found {
			file, err = sink.OpenRotatingFile(ep.Folder, ep.Prefix, cfg.Extension, now)
			if err != nil {
				return nil, err
			}
			byKey[ep.FileKey()] = file
			c.files = append(c.files, file)
			c.scheduler.Register(file)
			c.logger.Info("opened log file", "path", file.Path())
		}

		var persist sink.Sink = file
		if len(c.mirrors) > 0 {
			persist = sink.NewMultiSink(append([]sink.Sink{file}, c.mirrors...)...)
		}

		logger := c.logger.With("component", "supervisor")
		conn := Connection{URL: ep.URL, Filter: filter, Flags: flags, File: file}
		p := pipeline.New(conn.Filter, conn.Flags, persist, c.console, logger.With("url", ep.URL))
		c.conns = append(c.conns, conn)
		c.supervisors = append(c.supervisors, wsclient.NewSupervisor(ep.URL, p, wsclient.Options{
			ReconnectDelay: cfg.ReconnectDelay,
			Dialer:         c.dialer,
			Logger:         logger,
		}))
	}

	ok = true
	return c, nil
}

// Connections returns the per-endpoint setup in configuration order.
func (c *Collector) Connections() []Connection { return c.conns }

// Files returns every distinct file sink.
func (c *Collector) Files() []*sink.RotatingFile { return c.files }

// Scheduler returns the rotation scheduler.
func (c *Collector) Scheduler() *rotation.Scheduler { return c.scheduler }

// Run starts all supervisors and the rotation scheduler and blocks until ctx
// is done or a rotation fails. Supervisors never fail on their own, so a
// non-nil result is always unrecoverable.
func (c *Collector) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range c.supervisors {
		s := s
		g.Go(func() error { return s.Run(gctx) })
	}
	g.Go(func() error { return c.scheduler.Run(gctx) })

	c.logger.Info("collector started", "connections", len(c.supervisors), "files", len(c.files), "mirrors", len(c.mirrors))
	return g.Wait()
}

// Close closes every file and mirror.
func (c *Collector) Close() error {
	var errs []error
	for _, f := range c.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range c.mirrors {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openMirrors(ctx context.Context, cfg config.MirrorsConfig) ([]sink.Sink, error) {
	var mirrors []sink.Sink
	fail := func(err error) ([]sink.Sink, error) {
		for _, m := range mirrors {
			_ = m.Close()
		}
		return nil, err
	}

	if h := cfg.Http; h != nil {
		mirrors = append(mirrors, sink.NewHttpSink(h.URL, h.Method, h.ContentType, h.Timeout))
	}
	if r := cfg.Redis; r != nil {
		s, err := sink.NewRedisSink(ctx, r.Addr, r.Password, r.DB, r.Stream, r.MaxLen, r.Timeout)
		if err != nil {
			return fail(fmt.Errorf("redis mirror: %w", err))
		}
		mirrors = append(mirrors, s)
	}
	if k := cfg.Kafka; k != nil {
		mirrors = append(mirrors, sink.NewKafkaSink(k.Brokers, k.Topic, k.Timeout))
	}
	if m := cfg.Mqtt; m != nil {
		s, err := sink.NewMqttSink(m.Broker, m.ClientID, m.Topic, m.QoS, m.Timeout)
		if err != nil {
			return fail(fmt.Errorf("mqtt mirror: %w", err))
		}
		mirrors = append(mirrors, s)
	}
	return mirrors, nil
}
