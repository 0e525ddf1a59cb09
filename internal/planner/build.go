package planner

import (
	"fmt"

	"mirror/internal/query"
	"mirror/internal/schema"
)

// Limits bounds the fanout of one packed query.
type Limits struct {
	TypenamesLimit     int
	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
}

// chunk splits xs into groups of at most n.
func chunk[T any](xs []T, n int) [][]T {
	if n <= 0 || len(xs) == 0 {
		if len(xs) == 0 {
			return nil
		}
		n = len(xs)
	}
	var out [][]T
	for len(xs) > 0 {
		take := n
		if take > len(xs) {
			take = len(xs)
		}
		out = append(out, xs[:take])
		xs = xs[take:]
	}
	return out
}

// BuildQuery packs plan into a single Document honouring limits, grouping
// own-data refreshes by typename and connection refreshes by object so
// each group becomes one inline-fragment selection. It returns
// (nil, nil) for an empty plan.
func BuildQuery(plan *Plan, s *schema.Schema, limits Limits) (*query.Document, error) {
	if plan.Empty() {
		return nil, nil
	}

	db := query.NewDocument()
	op := db.Query("Sync")

	if err := buildTypenames(op, plan.Typenames, limits); err != nil {
		return nil, err
	}
	if err := buildOwnData(op, s, plan.OwnData, limits); err != nil {
		return nil, err
	}
	if err := buildConnections(op, s, plan.Connections, limits); err != nil {
		return nil, err
	}
	return db.Build(), nil
}

func capSlice[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}

func buildTypenames(op *query.OperationBuilder, ids []string, limits Limits) error {
	ids = capSlice(ids, limits.TypenamesLimit)
	for i, group := range chunk(ids, limits.NodesOfTypeLimit) {
		values := make([]query.Value, len(group))
		for j, id := range group {
			values[j] = query.StringValue(id)
		}
		nodes := op.Select().
			Field(fmt.Sprintf("%s%d", TypenamesPrefix, i), "nodes").
			Arg("ids", query.ListValue(values...))
		nodes.Select().Field("", "__typename")
		nodes.Select().Field("", "id")
	}
	return nil
}

func buildOwnData(op *query.OperationBuilder, s *schema.Schema, refs []ObjectRef, limits Limits) error {
	refs = capSlice(refs, limits.NodesLimit)

	byTypename := map[string][]string{}
	var order []string
	for _, ref := range refs {
		if _, seen := byTypename[ref.Typename]; !seen {
			order = append(order, ref.Typename)
		}
		byTypename[ref.Typename] = append(byTypename[ref.Typename], ref.ID)
	}

	i := 0
	for _, typename := range order {
		for _, group := range chunk(byTypename[typename], limits.NodesOfTypeLimit) {
			values := make([]query.Value, len(group))
			for j, id := range group {
				values[j] = query.StringValue(id)
			}
			nodes := op.Select().
				Field(fmt.Sprintf("%s%d", OwnDataPrefix, i), "nodes").
				Arg("ids", query.ListValue(values...))
			sel := nodes.Select()
			sel.Field("", "__typename")
			sel.Field("", "id")
			clause := sel.InlineFragment(typename)
			if err := addOwnDataFields(clause, s, typename); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

// addOwnDataFields adds every declared primitive, enum, link, and nested
// field of typename to clause, including every nested field's eggs.
func addOwnDataFields(clause *query.SelectionBuilder, s *schema.Schema, typename string) error {
	d := s.Lookup(typename)
	if d == nil || d.Kind != schema.DeclObject {
		return fmt.Errorf("mirror: %q is not a declared object type", typename)
	}
	for _, f := range d.Fields {
		switch f.Kind {
		case schema.KindID:
			// already requested at the node-shallow level.
		case schema.KindPrimitive, schema.KindEnum:
			clause.Field("", f.Name)
		case schema.KindNode:
			fs := clause.Field("", f.Name)
			addNodeShallowSelection(fs.Select(), s, f.Target, f.Fidelity)
		case schema.KindNested:
			nestedScope := clause.Field("", f.Name).Select()
			for _, egg := range f.Eggs {
				switch egg.Kind {
				case schema.KindPrimitive, schema.KindEnum:
					nestedScope.Field("", egg.Name)
				case schema.KindNode:
					eggScope := nestedScope.Field("", egg.Name)
					addNodeShallowSelection(eggScope.Select(), s, egg.Target, egg.Fidelity)
				}
			}
		}
	}
	return nil
}

// addNodeShallowSelection adds the "node-shallow" shape described in
// the node-shallow shape: __typename iff faithful, always id, and one
// "... on Clause { id }" per union clause when target is a union.
func addNodeShallowSelection(sel *query.SelectionBuilder, s *schema.Schema, target string, fidelity schema.Fidelity) {
	if fidelity == schema.Faithful {
		sel.Field("", "__typename")
	}
	sel.Field("", "id")
	for _, clause := range s.UnionClauses(target) {
		sel.InlineFragment(clause).Field("", "id")
	}
}

func buildConnections(op *query.OperationBuilder, s *schema.Schema, refs []ConnectionRef, limits Limits) error {
	refs = capSlice(refs, limits.ConnectionLimit)

	type group struct {
		objectID, typename string
		refs               []ConnectionRef
	}
	var groups []*group
	byObject := map[string]*group{}
	for _, ref := range refs {
		g, ok := byObject[ref.ObjectID]
		if !ok {
			g = &group{objectID: ref.ObjectID, typename: ref.Typename}
			byObject[ref.ObjectID] = g
			groups = append(groups, g)
		}
		g.refs = append(g.refs, ref)
	}

	for i, g := range groups {
		node := op.Select().
			Field(fmt.Sprintf("%s%d", NodePrefix, i), "node").
			Arg("id", query.StringValue(g.objectID))
		sel := node.Select()
		sel.Field("", "id")
		clause := sel.InlineFragment(g.typename)
		for _, ref := range g.refs {
			if err := addConnectionField(clause, s, ref, limits.ConnectionPageSize); err != nil {
				return err
			}
		}
	}
	return nil
}

func addConnectionField(clause *query.SelectionBuilder, s *schema.Schema, ref ConnectionRef, pageSize int) error {
	d := s.Lookup(ref.Typename)
	f := d.Field(ref.FieldName)
	if f == nil || f.Kind != schema.KindConnection {
		return fmt.Errorf("mirror: %q is not a declared connection on %q", ref.FieldName, ref.Typename)
	}

	fs := clause.Field("", ref.FieldName)
	fs.Arg("first", query.IntValue(int64(pageSize)))
	if ref.EndCursor != nil {
		fs.Arg("after", query.StringValue(*ref.EndCursor))
	}

	connSel := fs.Select()
	connSel.Field("", "totalCount")
	pageInfo := connSel.Field("", "pageInfo").Select()
	pageInfo.Field("", "endCursor")
	pageInfo.Field("", "hasNextPage")
	nodesScope := connSel.Field("", "nodes").Select()
	addNodeShallowSelection(nodesScope, s, f.Target, f.Fidelity)
	return nil
}
