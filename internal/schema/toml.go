package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// tomlSchema is the top-level TOML document shape for LoadTOML: every
// section is a top-level key, not nested.
type tomlSchema struct {
	Scalars []tomlScalar `toml:"scalars"`
	Enums   []tomlEnum   `toml:"enums"`
	Unions  []tomlUnion  `toml:"unions"`
	Objects []tomlObject `toml:"objects"`
}

type tomlScalar struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

type tomlEnum struct {
	Name   string   `toml:"name"`
	Values []string `toml:"values"`
}

type tomlUnion struct {
	Name    string   `toml:"name"`
	Clauses []string `toml:"clauses"`
}

type tomlObject struct {
	Name   string      `toml:"name"`
	Fields []tomlField `toml:"fields"`
}

type tomlField struct {
	Name        string      `toml:"name"`
	Kind        string      `toml:"kind"`
	Scalar      string      `toml:"scalar"`
	Nullability string      `toml:"nullability"`
	EnumName    string      `toml:"enum"`
	Target      string      `toml:"target"`
	Fidelity    string      `toml:"fidelity"`
	Eggs        []tomlField `toml:"eggs"`
}

// LoadTOML opens path and decodes it into a *Schema, an additive
// declarative construction surface alongside Builder. File shape:
//
//	[[scalars]]
//	name = "String"
//	category = "string"
//
//	[[objects]]
//	name = "Repo"
//	  [[objects.fields]]
//	  name = "id"
//	  kind = "id"
//
// The returned schema is validated exactly as a Builder-constructed one.
func LoadTOML(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: toml: open %q: %w", path, err)
	}
	defer f.Close()
	return DecodeTOML(f)
}

// DecodeTOML reads TOML content from r and converts it into a *Schema.
func DecodeTOML(r io.Reader) (*Schema, error) {
	var doc tomlSchema
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("schema: toml: decode: %w", err)
	}
	return newTOMLConverter(&doc).convert()
}

type tomlConverter struct {
	doc *tomlSchema
	out *Schema
}

func newTOMLConverter(doc *tomlSchema) *tomlConverter {
	return &tomlConverter{doc: doc, out: New()}
}

func (c *tomlConverter) convert() (*Schema, error) {
	for _, s := range c.doc.Scalars {
		cat, err := parseCategory(s.Category)
		if err != nil {
			return nil, fmt.Errorf("schema: toml: scalar %q: %w", s.Name, err)
		}
		c.out.add(&Decl{Name: s.Name, Kind: DeclScalar, Category: cat})
	}
	for _, e := range c.doc.Enums {
		c.out.add(&Decl{Name: e.Name, Kind: DeclEnum, Values: e.Values})
	}
	for _, u := range c.doc.Unions {
		c.out.add(&Decl{Name: u.Name, Kind: DeclUnion, Clauses: u.Clauses})
	}
	for _, o := range c.doc.Objects {
		fields := make([]*Field, 0, len(o.Fields))
		for _, tf := range o.Fields {
			f, err := convertField(&tf)
			if err != nil {
				return nil, fmt.Errorf("schema: toml: object %q: field %q: %w", o.Name, tf.Name, err)
			}
			fields = append(fields, f)
		}
		c.out.add(&Decl{Name: o.Name, Kind: DeclObject, Fields: fields})
	}
	if err := Validate(c.out); err != nil {
		return nil, err
	}
	return c.out, nil
}

func convertField(tf *tomlField) (*Field, error) {
	kind, err := parseFieldKind(tf.Kind)
	if err != nil {
		return nil, err
	}
	f := &Field{
		Name:     tf.Name,
		Kind:     kind,
		Scalar:   tf.Scalar,
		EnumName: tf.EnumName,
		Target:   tf.Target,
	}
	if tf.Nullability != "" {
		n, err := parseNullability(tf.Nullability)
		if err != nil {
			return nil, err
		}
		f.Nullability = n
	}
	if tf.Fidelity != "" {
		fid, err := parseFidelity(tf.Fidelity)
		if err != nil {
			return nil, err
		}
		f.Fidelity = fid
	}
	for _, egg := range tf.Eggs {
		eggField, err := convertField(&egg)
		if err != nil {
			return nil, fmt.Errorf("egg %q: %w", egg.Name, err)
		}
		f.Eggs = append(f.Eggs, eggField)
	}
	return f, nil
}

func parseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "id":
		return KindID, nil
	case "primitive":
		return KindPrimitive, nil
	case "enum":
		return KindEnum, nil
	case "node":
		return KindNode, nil
	case "connection":
		return KindConnection, nil
	case "nested":
		return KindNested, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q", s)
	}
}

func parseNullability(s string) (Nullability, error) {
	switch s {
	case "nullable":
		return Nullable, nil
	case "non_null", "nonnull":
		return NonNull, nil
	default:
		return 0, fmt.Errorf("unknown nullability %q", s)
	}
}

func parseFidelity(s string) (Fidelity, error) {
	switch s {
	case "faithful":
		return Faithful, nil
	case "unfaithful":
		return Unfaithful, nil
	default:
		return 0, fmt.Errorf("unknown fidelity %q", s)
	}
}

func parseCategory(s string) (ScalarCategory, error) {
	switch s {
	case "string":
		return CategoryString, nil
	case "number":
		return CategoryNumber, nil
	case "boolean":
		return CategoryBoolean, nil
	default:
		return 0, fmt.Errorf("unknown scalar category %q", s)
	}
}
