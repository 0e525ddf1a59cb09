// Package mirror is the driver surface: it wires the schema model,
// relational store, query planner, ingestor, and extractor into one
// update loop and a read-side extraction call: one function per verb,
// calling straight into internal/*, minus a CLI layer, which
// has no place in an embeddable library.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jensneuse/abstractlogger"

	"mirror/internal/extract"
	"mirror/internal/ingest"
	"mirror/internal/planner"
	"mirror/internal/query"
	"mirror/internal/schema"
	"mirror/internal/store"
)

// Version is bumped whenever the relational layout or its interpretation
// changes. It is folded into meta.config alongside the schema fingerprint
// and the caller's options, so two installations that disagree on any of
// the three refuse to share a file.
const Version = "1"

// Mirror is a single local, schema-typed mirror of a remote object
// graph, backed by one embedded store file.
type Mirror struct {
	store   *store.Store
	schema  *schema.Schema
	options Options
}

// New opens (or initialises) the store at path and binds it to schema s
// under options. Opening with a schema/options combination incompatible
// with an existing file's meta row fails with store.ErrSchemaMismatch and
// leaves the file untouched.
func New(ctx context.Context, path string, s *schema.Schema, options Options) (*Mirror, error) {
	options = options.withDefaults()

	fingerprint, err := schema.Fingerprint(s)
	if err != nil {
		return nil, err
	}
	optionsFingerprint, err := fingerprintOptions(options)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, path, store.Config{
		Version:           Version,
		SchemaFingerprint: fingerprint,
		Options:           optionsFingerprint,
	})
	if err != nil {
		return nil, err
	}
	return &Mirror{store: st, schema: s, options: options}, nil
}

// fingerprintOptions canonicalises the subset of Options that affects
// binary compatibility: the blacklist. GuessTypename and Logger are
// behavioural seams, not stored state, so they play no part in
// meta.config.
func fingerprintOptions(o Options) (string, error) {
	ids := make([]string, 0, len(o.BlacklistedIDs))
	for id := range o.BlacklistedIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("mirror: fingerprint options: %w", err)
	}
	return string(b), nil
}

// Close releases the underlying store connection.
func (m *Mirror) Close() error {
	return m.store.Close()
}

// RegisterObject registers an object by id, with or without a known
// typename. A known typename that disagrees with Options.GuessTypename is
// logged as a warning, never raised as an error.
func (m *Mirror) RegisterObject(ctx context.Context, id string, typename *string) error {
	if err := store.WithTx(ctx, m.store, func(tx *store.Tx) error {
		return store.Register(ctx, tx, m.schema, id, typename)
	}); err != nil {
		return err
	}
	if typename != nil && m.options.GuessTypename != nil {
		if guessed, ok := m.options.GuessTypename(id); ok && guessed != *typename {
			m.options.Logger.Warn("mirror: typename guess mismatch",
				abstractlogger.String("id", id),
				abstractlogger.String("guessed", guessed),
				abstractlogger.String("actual", *typename),
			)
		}
	}
	return nil
}

// Update runs the update loop to quiescence: plan, emit, send via
// transport, ingest, repeat, until a planned query would be empty. Every
// transport round trip is recorded in network_log, linked to the update
// row its ingest produced.
func (m *Mirror) Update(ctx context.Context, transport Transport, opts UpdateOptions) error {
	pl := planner.NewPlanner(planner.Configuration{
		Schema: m.schema,
		Limits: planner.Limits{
			TypenamesLimit:     opts.TypenamesLimit,
			NodesLimit:         opts.NodesLimit,
			NodesOfTypeLimit:   opts.NodesOfTypeLimit,
			ConnectionLimit:    opts.ConnectionLimit,
			ConnectionPageSize: opts.ConnectionPageSize,
		},
		Logger: m.options.Logger,
	})
	ig := ingest.New(m.schema, m.options.BlacklistedIDs, m.options.GuessTypename, m.options.Logger)

	for {
		_, doc, err := pl.Plan(ctx, m.store.DB(), opts.Since)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}

		body := query.Print(doc, query.Multiline())
		variables := map[string]any{}
		variablesJSON, err := json.Marshal(variables)
		if err != nil {
			return fmt.Errorf("mirror: encode variables: %w", err)
		}

		logID, err := store.LogRequest(ctx, m.store, body, string(variablesJSON), opts.Now)
		if err != nil {
			return err
		}

		resp, err := transport(ctx, Request{Body: body, Variables: variables})
		if err != nil {
			return fmt.Errorf("mirror: transport: %w", err)
		}

		responseJSON, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("mirror: encode response: %w", err)
		}

		updateID, err := ig.Ingest(ctx, m.store, opts.Now, resp)
		if err != nil {
			return err
		}
		if err := store.LogResponse(ctx, m.store, logID, opts.Now, string(responseJSON), &updateID); err != nil {
			return err
		}
	}
}

// Extract materialises the transitive dependency closure rooted at
// rootID.
func (m *Mirror) Extract(ctx context.Context, rootID string) (extract.Record, error) {
	return extract.Extract(ctx, m.store, m.schema, rootID)
}
