package schema

import "fmt"

// Validate checks every structural invariant a well-formed schema must
// hold. It returns the first violation found, running a fixed sequence
// of small, focused checks.
func Validate(s *Schema) error {
	if s == nil || len(s.Order) == 0 {
		return fmt.Errorf("schema: empty schema")
	}
	for _, name := range s.Order {
		d := s.Types[name]
		switch d.Kind {
		case DeclObject:
			if err := validateObject(s, d); err != nil {
				return err
			}
		case DeclUnion:
			if err := validateUnion(s, d); err != nil {
				return err
			}
		case DeclScalar, DeclEnum:
			// No cross-references to validate.
		default:
			return fmt.Errorf("schema: type %q: unknown declaration kind %v", d.Name, d.Kind)
		}
	}
	return nil
}

func validateObject(s *Schema, d *Decl) error {
	idCount := 0
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == TypenameFieldName {
			return fmt.Errorf("schema: object %q: field %q uses the reserved name %q", d.Name, f.Name, TypenameFieldName)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema: object %q: field %q declared more than once", d.Name, f.Name)
		}
		seen[f.Name] = true

		if f.Kind == KindID {
			idCount++
			if idCount > 1 {
				return fmt.Errorf("schema: object %q: must declare exactly one ID field, found more than one", d.Name)
			}
			if f.Name != IDFieldName {
				return fmt.Errorf("schema: object %q: ID field must be named %q, got %q", d.Name, IDFieldName, f.Name)
			}
		}

		if err := validateFieldReferences(s, d.Name, f); err != nil {
			return err
		}
	}
	if idCount != 1 {
		return fmt.Errorf("schema: object %q: must declare exactly one ID field, found %d", d.Name, idCount)
	}
	return nil
}

// validateFieldReferences checks that Node/Connection targets exist and are
// of the expected kind, and that Nested eggs are restricted to
// Primitive/Node and carry no reserved name.
func validateFieldReferences(s *Schema, owner string, f *Field) error {
	switch f.Kind {
	case KindEnum:
		target := s.Lookup(f.EnumName)
		if target == nil {
			return fmt.Errorf("schema: object %q: field %q references undeclared enum %q", owner, f.Name, f.EnumName)
		}
		if target.Kind != DeclEnum {
			return fmt.Errorf("schema: object %q: field %q references %q, which is not an enum", owner, f.Name, f.EnumName)
		}
	case KindPrimitive:
		target := s.Lookup(f.Scalar)
		if target == nil {
			return fmt.Errorf("schema: object %q: field %q references undeclared scalar %q", owner, f.Name, f.Scalar)
		}
		if target.Kind != DeclScalar {
			return fmt.Errorf("schema: object %q: field %q references %q, which is not a scalar", owner, f.Name, f.Scalar)
		}
	case KindNode, KindConnection:
		if err := validateReferenceTarget(s, owner, f); err != nil {
			return err
		}
	case KindNested:
		if f.Name == TypenameFieldName {
			return fmt.Errorf("schema: object %q: nested field %q uses the reserved name %q", owner, f.Name, TypenameFieldName)
		}
		eggSeen := make(map[string]bool, len(f.Eggs))
		for _, egg := range f.Eggs {
			if egg.Kind != KindPrimitive && egg.Kind != KindNode {
				return fmt.Errorf("schema: object %q: nested field %q egg %q must be Primitive or Node, got %v", owner, f.Name, egg.Name, egg.Kind)
			}
			if egg.Name == TypenameFieldName {
				return fmt.Errorf("schema: object %q: nested field %q egg %q uses the reserved name %q", owner, f.Name, egg.Name, TypenameFieldName)
			}
			if eggSeen[egg.Name] {
				return fmt.Errorf("schema: object %q: nested field %q: egg %q declared more than once", owner, f.Name, egg.Name)
			}
			eggSeen[egg.Name] = true
			if err := validateFieldReferences(s, owner+"."+f.Name, egg); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateReferenceTarget(s *Schema, owner string, f *Field) error {
	target := s.Lookup(f.Target)
	if target == nil {
		return fmt.Errorf("schema: object %q: field %q references undeclared type %q", owner, f.Name, f.Target)
	}
	if target.Kind != DeclObject && target.Kind != DeclUnion {
		return fmt.Errorf("schema: object %q: field %q targets %q, which is neither an object nor a union", owner, f.Name, f.Target)
	}
	return nil
}

func validateUnion(s *Schema, d *Decl) error {
	if len(d.Clauses) == 0 {
		return fmt.Errorf("schema: union %q: must declare at least one clause", d.Name)
	}
	seen := make(map[string]bool, len(d.Clauses))
	for _, clause := range d.Clauses {
		if seen[clause] {
			return fmt.Errorf("schema: union %q: clause %q listed more than once", d.Name, clause)
		}
		seen[clause] = true
		target := s.Lookup(clause)
		if target == nil {
			return fmt.Errorf("schema: union %q: clause %q is not declared", d.Name, clause)
		}
		if target.Kind != DeclObject {
			return fmt.Errorf("schema: union %q: clause %q must be an object type, got %v", d.Name, clause, target.Kind)
		}
	}
	return nil
}
