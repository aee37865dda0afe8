package query

import (
	"context"
	"io"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/kernel"
	"github.com/kernelql/kernelql/options"
	"github.com/kernelql/kernelql/pkg/log"
	"github.com/kernelql/kernelql/spice"
)

// Engine answers catalog queries for the missions of a config store.
type Engine struct {
	opts      *options.Options
	configs   *config.Store
	resolver  *Resolver
	pool      *kernel.Pool
	logger    log.Logger
	coverage  *xsync.MapOf[string, []spice.Interval]
	clocks    *kernel.Set
	telemeter *telemetry.Telemeter
	mu        sync.Mutex
}

// NewEngine returns an engine reading configs from configs and furnishing kernels through pool.
// A nil pool selects kernel.DefaultPool, whose in-memory store knows no coverage windows: FilterByTime
// against it leaves every ck and spk bucket empty. Pass a pool over a real store to filter by time.
func NewEngine(opts *options.Options, configs *config.Store, pool *kernel.Pool) *Engine {
	if pool == nil {
		pool = kernel.DefaultPool()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		opts:     opts,
		configs:  configs,
		resolver: NewResolver(opts.FS, opts.ListingCacheTTL),
		pool:     pool,
		logger:   logger,
		coverage: xsync.NewMapOf[string, []spice.Interval](),
	}
}

// Resolver returns the pattern resolver used by the engine.
func (engine *Engine) Resolver() *Resolver { return engine.resolver }

// Pool returns the kernel pool used by the engine.
func (engine *Engine) Pool() *kernel.Pool { return engine.pool }

// Configs returns the config store used by the engine.
func (engine *Engine) Configs() *config.Store { return engine.configs }

// Start sets up the exporters named by the telemetry options, loads the configs and furnishes the
// clock kernels of every mission. Operations called after Start report through those exporters.
func (engine *Engine) Start(ctx context.Context) error {
	if err := engine.startTelemetry(ctx); err != nil {
		return err
	}

	ctx = engine.withTelemetry(ctx)

	if err := engine.configs.Load(ctx); err != nil {
		return err
	}

	clocks, err := engine.LoadTimeKernels(ctx)
	if err != nil {
		return err
	}

	engine.mu.Lock()
	previous := engine.clocks
	engine.clocks = clocks
	engine.mu.Unlock()

	if previous != nil {
		return previous.Close(ctx)
	}

	return nil
}

// Close releases the clock kernels furnished by Start and flushes the exporters.
func (engine *Engine) Close(ctx context.Context) error {
	ctx = engine.withTelemetry(ctx)

	engine.mu.Lock()
	clocks, tlm := engine.clocks, engine.telemeter
	engine.clocks, engine.telemeter = nil, nil
	engine.mu.Unlock()

	errs := &errors.MultiError{}

	if clocks != nil {
		errs = errs.Append(clocks.Close(ctx))
	}

	errs = errs.Append(tlm.Shutdown(ctx))

	return errs.ErrorOrNil()
}

func (engine *Engine) startTelemetry(ctx context.Context) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.telemeter != nil {
		return nil
	}

	writer := engine.opts.Writer
	if writer == nil {
		writer = io.Discard
	}

	tlm, err := telemetry.NewTelemeter(ctx, options.AppName, options.Version, writer, engine.opts.Telemetry)
	if err != nil {
		return err
	}

	engine.telemeter = tlm

	return nil
}

// withTelemetry attaches the telemeter built by Start to ctx.
func (engine *Engine) withTelemetry(ctx context.Context) context.Context {
	engine.mu.Lock()
	tlm := engine.telemeter
	engine.mu.Unlock()

	if tlm == nil {
		return ctx
	}

	return telemetry.ContextWithTelemeter(ctx, tlm)
}

// Clocks returns the clock kernels furnished by Start, or nil before Start.
func (engine *Engine) Clocks() *kernel.Set {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	return engine.clocks
}

// Search is SearchMissionKernels against the configured data root.
func (engine *Engine) Search(ctx context.Context, conf *config.Node) (*config.Node, error) {
	ctx = engine.withTelemetry(ctx)

	root, err := engine.opts.DataRoot()
	if err != nil {
		return nil, err
	}

	return engine.SearchMissionKernels(ctx, root, conf)
}

// SearchMission is Search over the config document named after mission.
func (engine *Engine) SearchMission(ctx context.Context, mission string) (*config.Node, error) {
	ctx = engine.withTelemetry(ctx)

	conf, err := engine.configs.MissionConfig(ctx, mission)
	if err != nil {
		return nil, err
	}

	catalog, err := engine.Search(ctx, conf)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "searching kernels of %s", mission)
	}

	return catalog, nil
}

func (engine *Engine) parallelism() int {
	if engine.opts.Parallelism > 0 {
		return engine.opts.Parallelism
	}

	return 1
}
