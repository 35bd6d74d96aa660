// Package api provides the HTTP API for the application
package api

import (
	"context"

	"plateful/internal/platform/config"
	"plateful/internal/platform/logger"
	phttp "plateful/internal/platform/net/http"
	"plateful/internal/platform/store"

	"plateful/internal/modkit"
	"plateful/internal/modkit/httpkit"
	"plateful/internal/modkit/module"
	"plateful/internal/modkit/swaggerkit"

	ondemandmod "plateful/internal/services/ondemand/module"
	searchdomain "plateful/internal/services/search/domain"
	searchmod "plateful/internal/services/search/module"

	ondemanddomain "plateful/internal/services/ondemand/domain"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Ondemand owns admission; construct it first and hand its Enqueuer to
	// search as the coverage trigger port
	ondemand := ondemandmod.New(deps)
	enq := module.MustPortsOf[ondemandmod.Ports](ondemand).Enqueuer

	search := searchmod.New(
		deps,
		modkit.WithPorts(searchmod.Ports{
			Trigger: &triggerAdapter{enq: enq},
		}),
	)

	mods := []module.Module{
		ondemand,
		search,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			m.MountRoutes(api)
		}
	})
}

// triggerAdapter bridges search's trigger port onto ondemand's enqueue port.
// Receipts are dropped; the search path only cares that triggers landed.
type triggerAdapter struct {
	enq ondemanddomain.EnqueuePort
}

func (a *triggerAdapter) Trigger(ctx context.Context, inputs []searchdomain.TriggerInput) error {
	ins := make([]ondemanddomain.Input, 0, len(inputs))
	for _, in := range inputs {
		ins = append(ins, ondemanddomain.Input{
			Term:        in.Term,
			EntityType:  in.EntityType,
			Reason:      in.Reason,
			LocationKey: in.LocationKey,
		})
	}
	_, err := a.enq.Enqueue(ctx, ins)
	return err
}
