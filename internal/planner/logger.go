package planner

import (
	"context"
	"database/sql"

	"github.com/jensneuse/abstractlogger"

	"mirror/internal/query"
	"mirror/internal/schema"
)

// Configuration bundles the inputs a Planner needs beyond the store's
// own *sql.DB: the schema driving own-data/connection field selection,
// the fanout limits, and an optional diagnostic logger (grounded on
// plan.Configuration/NewPlanner in the graphql-go-tools pack: "if
// config.Logger == nil { config.Logger = abstractlogger.Noop{} }").
type Configuration struct {
	Schema *schema.Schema
	Limits Limits
	Logger abstractlogger.Logger
}

// Planner computes and packs staleness plans for one mirror instance.
type Planner struct {
	config Configuration
}

// NewPlanner returns a Planner, defaulting an unset Logger to a no-op
// implementation.
func NewPlanner(config Configuration) *Planner {
	if config.Logger == nil {
		config.Logger = abstractlogger.Noop{}
	}
	return &Planner{config: config}
}

// Plan computes the staleness snapshot and, unless it is empty, packs it
// into a query.Document ready for the transport.
func (p *Planner) Plan(ctx context.Context, db *sql.DB, sinceMillis int64) (*Plan, *query.Document, error) {
	plan, err := Build(ctx, db, sinceMillis)
	if err != nil {
		p.config.Logger.Error("planner: compute plan failed", abstractlogger.Error(err))
		return nil, nil, err
	}
	if plan.Empty() {
		p.config.Logger.Debug("planner: plan is empty, update loop converged")
		return plan, nil, nil
	}

	doc, err := BuildQuery(plan, p.config.Schema, p.config.Limits)
	if err != nil {
		p.config.Logger.Error("planner: build query failed", abstractlogger.Error(err))
		return nil, nil, err
	}
	p.config.Logger.Debug("planner: packed plan",
		abstractlogger.Int("typenames", len(plan.Typenames)),
		abstractlogger.Int("own_data", len(plan.OwnData)),
		abstractlogger.Int("connections", len(plan.Connections)),
	)
	return plan, doc, nil
}
