// Package module wires search into the API using modkit
package module

import (
	"net/http"

	modkit "plateful/internal/modkit"
	"plateful/internal/modkit/httpkit"

	"plateful/internal/services/search/domain"
	shttp "plateful/internal/services/search/http"
	srepo "plateful/internal/services/search/repo"
	ssvc "plateful/internal/services/search/service"
)

// Ports exposed by the search module, plus the injected trigger port
type Ports struct {
	Query domain.QueryPort

	// Trigger is injected by the composition root (owned by ondemand)
	Trigger domain.TriggerPort
}

// Module implements the search module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *ssvc.Svc
}

// New constructs the search module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("search"),
		modkit.WithPrefix("/search"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}

	svc := ssvc.New(
		deps.PG,
		srepo.NewPG(),
		srepo.NewEvents(deps.CH),
		injected.Trigger,
		ssvc.Config{
			DefaultPageSize:    cfg.DefaultPageSize,
			MaxPageSize:        cfg.MaxPageSize,
			TopDishes:          cfg.TopDishes,
			OverfetchFactor:    cfg.OverfetchFactor,
			IncludeUnsupported: cfg.IncludeUnsupported,
			TriggerThreshold:   cfg.TriggerThreshold,
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
	m.ports = Ports{Query: svc, Trigger: injected.Trigger}

	external := b.Register
	m.register = func(r httpkit.Router) {
		shttp.Register(r, m.svc)
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
