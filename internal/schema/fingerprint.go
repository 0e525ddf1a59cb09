package schema

import "encoding/json"

// canonField / canonDecl are JSON-stable projections of Field / Decl: plain
// structs with explicit field order, marshalled through encoding/json,
// which preserves struct field declaration order and (for our slices,
// never maps) preserves element order too. This is what makes Fingerprint
// deterministic across runs for an unchanged schema, independent of map
// iteration order — a schema that hasn't changed must always fingerprint
// to the same value.
type canonField struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Scalar      string       `json:"scalar,omitempty"`
	Nullability string       `json:"nullability,omitempty"`
	EnumName    string       `json:"enumName,omitempty"`
	Target      string       `json:"target,omitempty"`
	Fidelity    string       `json:"fidelity,omitempty"`
	Eggs        []canonField `json:"eggs,omitempty"`
}

type canonDecl struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Fields   []canonField `json:"fields,omitempty"`
	Clauses  []string     `json:"clauses,omitempty"`
	Category string       `json:"category,omitempty"`
	Values   []string     `json:"values,omitempty"`
}

func canonicalizeField(f *Field) canonField {
	cf := canonField{
		Name:     f.Name,
		Kind:     f.Kind.String(),
		Scalar:   f.Scalar,
		EnumName: f.EnumName,
		Target:   f.Target,
	}
	switch f.Kind {
	case KindPrimitive, KindEnum:
		cf.Nullability = f.Nullability.String()
	case KindNode, KindConnection:
		cf.Fidelity = f.Fidelity.String()
	}
	for _, egg := range f.Eggs {
		cf.Eggs = append(cf.Eggs, canonicalizeField(egg))
	}
	return cf
}

func canonicalizeDecl(d *Decl) canonDecl {
	cd := canonDecl{Name: d.Name, Kind: d.Kind.String()}
	switch d.Kind {
	case DeclObject:
		for _, f := range d.Fields {
			cd.Fields = append(cd.Fields, canonicalizeField(f))
		}
	case DeclUnion:
		cd.Clauses = append([]string(nil), d.Clauses...)
	case DeclScalar:
		cd.Category = []string{"string", "number", "boolean"}[d.Category]
	case DeclEnum:
		cd.Values = append([]string(nil), d.Values...)
	}
	return cd
}

// Fingerprint returns a canonical, deterministic JSON serialisation of s,
// suitable as (part of) the meta.config compatibility blob a store
// compares on open. Two schemas that declare the same types, fields, and
// targets in the same order always produce byte-identical fingerprints;
// any structural difference changes the output.
func Fingerprint(s *Schema) (string, error) {
	decls := make([]canonDecl, 0, len(s.Order))
	for _, name := range s.Order {
		decls = append(decls, canonicalizeDecl(s.Types[name]))
	}
	b, err := json.Marshal(decls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
