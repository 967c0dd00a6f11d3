// Package dependency wires the gateway's services using go.uber.org/dig.
package dependency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/dig"
	"goa.design/clue/log"

	"fnrelay/gateway/internal/agent"
	"fnrelay/gateway/internal/agent/anthropic"
	"fnrelay/gateway/internal/app"
	"fnrelay/gateway/internal/builtin"
	"fnrelay/gateway/internal/config"
	"fnrelay/gateway/internal/hostfn"
	"fnrelay/gateway/internal/observability"
	"fnrelay/gateway/internal/registry"
	"fnrelay/gateway/internal/repo"
	"fnrelay/gateway/internal/repo/mongostore"
	"fnrelay/gateway/internal/repo/redisstore"
	"fnrelay/gateway/internal/service/adapters"
	"fnrelay/gateway/internal/service/hooks"
	"fnrelay/gateway/internal/service/ports"
	"fnrelay/gateway/internal/signkey"
)

const backendConnectTimeout = 10 * time.Second

// Container holds the resolved singletons. Callers use the typed getters and
// never import dig directly.
type Container struct {
	server   *app.Server
	registry *registry.Registry
	signer   signkey.Signer
	closers  *closers
}

func (c *Container) Server() *app.Server           { return c.server }
func (c *Container) Registry() *registry.Registry { return c.registry }
func (c *Container) Signer() signkey.Signer       { return c.signer }

// Close releases backend connections opened for the hook store.
func (c *Container) Close(ctx context.Context) error {
	return c.closers.close(ctx)
}

// Options carries what cannot come from configuration.
type Options struct {
	// LogContext is the clue root context; requests inherit its logger.
	LogContext context.Context
	// Directory backs lookup_user. Nil serves an empty directory.
	Directory hostfn.Directory
	// Reasoner overrides the Anthropic reasoner built from the API key.
	Reasoner agent.Reasoner
	// Store overrides the hook store selected by cfg.HookBackend.
	Store ports.HookStore
}

// closers collects shutdown hooks in the order resources were opened.
type closers struct {
	fns []func(context.Context) error
}

func (c *closers) add(fn func(context.Context) error) {
	c.fns = append(c.fns, fn)
}

func (c *closers) close(ctx context.Context) error {
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.fns = nil
	return errors.Join(errs...)
}

// New builds and wires every service from cfg.
func New(cfg config.Config, opts Options) (*Container, error) {
	if opts.LogContext == nil {
		opts.LogContext = context.Background()
	}
	if opts.Directory == nil {
		opts.Directory = hostfn.StaticDirectory{}
	}
	cl := &closers{}
	d := dig.New()

	providers := []interface{}{
		func() config.Config { return cfg },
		func() Options { return opts },
		func() *closers { return cl },
		newHookStore,
		newHookService,
		newBuiltinCatalog,
		newRegistry,
		newSigner,
		observability.NewTelemetry,
		newAgentLoop,
		newServer,
	}
	for _, provide := range providers {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(srv *app.Server, reg *registry.Registry, signer signkey.Signer) {
		result = &Container{server: srv, registry: reg, signer: signer, closers: cl}
	})
	if err != nil {
		_ = cl.close(context.Background())
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newHookStore(cfg config.Config, opts Options, cl *closers) (ports.HookStore, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}
	switch cfg.HookBackend {
	case config.HookBackendMemory:
		return adapters.NewRepoHookStore(repo.NewMemoryStore()), nil
	case config.HookBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cl.add(func(context.Context) error { return rdb.Close() })
		ctx, cancel := context.WithTimeout(opts.LogContext, backendConnectTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return redisstore.New(rdb), nil
	case config.HookBackendMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("mongo hook backend needs FNRELAY_MONGO_URI")
		}
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		cl.add(client.Disconnect)
		store := mongostore.New(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
		ctx, cancel := context.WithTimeout(opts.LogContext, backendConnectTimeout)
		defer cancel()
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return store, nil
	default:
		store, err := repo.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open state in %s: %w", cfg.DataDir, err)
		}
		return adapters.NewRepoHookStore(store), nil
	}
}

func newHookService(store ports.HookStore) *hooks.Service {
	return hooks.NewService(hooks.Dependencies{Store: store})
}

func newBuiltinCatalog(svc *hooks.Service) *builtin.Catalog {
	return builtin.New(builtin.Options{Hooks: svc})
}

func newRegistry(cfg config.Config, opts Options, catalog *builtin.Catalog) (*registry.Registry, error) {
	reg := registry.New(registry.Options{
		CallTimeout: cfg.CallTimeout(),
		Builtins:    catalog,
	})
	if err := reg.LoadBuiltins(registry.ParseCategories(cfg.BuiltinCategories)...); err != nil {
		return nil, fmt.Errorf("load builtins: %w", err)
	}
	if err := hostfn.Register(reg, opts.Directory); err != nil {
		return nil, fmt.Errorf("register host functions: %w", err)
	}
	return reg, nil
}

func newSigner(cfg config.Config) (signkey.Signer, error) {
	signer, err := signkey.NewSigner(cfg.Secret)
	if err != nil {
		return signkey.Signer{}, fmt.Errorf("FNRELAY_SECRET: %w", err)
	}
	return signer, nil
}

// newAgentLoop returns nil when neither an override nor an API key is set.
func newAgentLoop(cfg config.Config, opts Options, reg *registry.Registry) (*agent.Loop, error) {
	reasoner := opts.Reasoner
	if reasoner == nil {
		if cfg.AnthropicAPIKey == "" {
			log.Printf(opts.LogContext, "no anthropic api key configured, /agent/chat disabled")
			return nil, nil
		}
		r, err := anthropic.NewFromAPIKey(cfg.AnthropicAPIKey, anthropic.Options{Model: cfg.AnthropicModel})
		if err != nil {
			return nil, fmt.Errorf("anthropic reasoner: %w", err)
		}
		reasoner = r
	}
	return agent.NewLoop(reg, reasoner, agent.Options{MaxSteps: cfg.AgentMaxSteps}), nil
}

func newServer(
	cfg config.Config,
	opts Options,
	reg *registry.Registry,
	svc *hooks.Service,
	signer signkey.Signer,
	telemetry *observability.Telemetry,
	loop *agent.Loop,
) (*app.Server, error) {
	return app.NewServer(app.Dependencies{
		Config:     cfg,
		Registry:   reg,
		Hooks:      svc,
		Verifier:   signer,
		Telemetry:  telemetry,
		Agent:      loop,
		LogContext: opts.LogContext,
	})
}
