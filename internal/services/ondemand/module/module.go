// Package module wires ondemand into the API using modkit
package module

import (
	"net/http"

	modkit "plateful/internal/modkit"
	"plateful/internal/modkit/httpkit"

	"plateful/internal/adapters/collection"
	"plateful/internal/services/ondemand/domain"
	ohttp "plateful/internal/services/ondemand/http"
	orepo "plateful/internal/services/ondemand/repo"
	osvc "plateful/internal/services/ondemand/service"
)

// Ports exposed by the ondemand module
type Ports struct {
	Enqueuer domain.EnqueuePort
	Status   domain.StatusPort
	Worker   domain.WorkerPort
}

// Module implements the ondemand module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *osvc.Svc
}

// New constructs the ondemand module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("ondemand"),
		modkit.WithPrefix("/ondemand"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	col := collection.NewClient(collection.Options{
		BaseURL: cfg.CollectionURL,
		Timeout: cfg.CollectionTimeout,
	})

	svc := osvc.New(
		deps.PG,
		orepo.NewPG(),
		col,
		osvc.Config{
			InstantCooldown:     cfg.InstantCooldown,
			BaseInterval:        cfg.BaseInterval,
			NoResultsMultiplier: cfg.NoResultsMultiplier,
			CooldownFloor:       cfg.CooldownFloor,

			MaxWaiting:           cfg.MaxWaiting,
			MaxActive:            cfg.MaxActive,
			MaxProcessingBacklog: cfg.MaxProcessingBacklog,

			SweepBatch:     cfg.SweepBatch,
			Concurrency:    cfg.Concurrency,
			TickEvery:      cfg.TickEvery,
			EstimatedCycle: cfg.EstimatedCycle,
		},
	)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Enqueuer: svc, Status: svc, Worker: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ohttp.Register(r, m.svc, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }

// Ports returns the module port set
func (m *Module) Ports() any { return m.ports }
