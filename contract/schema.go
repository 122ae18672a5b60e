package contract

// Kind identifies the value shape a SchemaNode constrains.
type Kind uint8

const (
	// KindAny places no shape constraint on the value.
	KindAny Kind = iota
	// KindString constrains the value to strings.
	KindString
	// KindNumber constrains the value to numbers, integral or not.
	KindNumber
	// KindInteger constrains the value to whole numbers.
	KindInteger
	// KindBoolean constrains the value to booleans.
	KindBoolean
	// KindArray constrains the value to arrays.
	KindArray
	// KindObject constrains the value to objects.
	KindObject
	// KindUnion marks a node whose shape is given entirely by its
	// alternatives (a bare oneOf/anyOf with no declared type).
	KindUnion
)

// String returns the lowercase name of the kind, matching the type names
// used in OpenAPI documents.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	default:
		return "any"
	}
}

// AdditionalMode selects how an object schema treats undeclared properties.
type AdditionalMode uint8

const (
	// AdditionalAllow permits undeclared properties without constraint.
	AdditionalAllow AdditionalMode = iota
	// AdditionalForbid rejects undeclared properties.
	AdditionalForbid
	// AdditionalSchema validates undeclared properties against a schema.
	AdditionalSchema
)

// AdditionalPolicy captures an object schema's additionalProperties
// behavior. Schema is set only when Mode is AdditionalSchema.
//
// When a document says nothing, the policy comes from the compile-time
// default (WithDefaultAdditionalProperties); out of the box undeclared
// properties are allowed, matching JSON Schema semantics.
type AdditionalPolicy struct {
	Mode   AdditionalMode
	Schema *SchemaNode
}

// SchemaNode is one node of a compiled schema graph.
//
// Nodes compiled from a $ref target are shared: every referent of the same
// target points at the same *SchemaNode. Pointer identity is therefore a
// stable node identity, which is what the validation cycle guard keys on.
// Self-referential graphs are legal and must be walked with that guard.
//
// A zero-value node (KindAny, no constraints) accepts every value.
// Constraint pointers are nil when the document does not declare them, so
// "not constrained" and "constrained to zero" stay distinct.
type SchemaNode struct {
	Kind     Kind
	Nullable bool
	Format   string
	Enum     []any

	// Numeric constraints.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	// String constraints. Lengths count characters, not bytes.
	MinLength *int
	MaxLength *int
	Pattern   string

	// Array constraints. A nil Items leaves elements unconstrained.
	Items       *SchemaNode
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// Object constraints.
	Properties    map[string]*SchemaNode
	Required      []string
	Additional    AdditionalPolicy
	MinProperties *int
	MaxProperties *int

	// Composition. AnyOf passes when at least one branch passes, OneOf
	// when exactly one does, AllOf when every branch does. All three
	// apply in addition to the node's own constraints.
	AnyOf []*SchemaNode
	OneOf []*SchemaNode
	AllOf []*SchemaNode

	// Ref is the canonical source location for nodes compiled from a
	// $ref target ("" for inline schemas).
	Ref string
}

// HasAlternatives reports whether the node declares oneOf or anyOf
// branches.
func (s *SchemaNode) HasAlternatives() bool {
	return len(s.OneOf) > 0 || len(s.AnyOf) > 0
}
