package ifc

// Entity is a typed, attributed node in the document graph. Attribute
// access is capability-checked: callers probe with Attr and handle
// absence instead of assuming a fixed shape per type.
type Entity struct {
	ID         int64            `json:"id"`
	Type       string           `json:"type"`
	GlobalID   string           `json:"global_id,omitempty"`
	Attributes map[string]Value `json:"attributes,omitempty"`
}

// NewEntity creates an entity of the given type with no attributes set.
// The ID is assigned when the entity is added to a document.
func NewEntity(typeTag string) *Entity {
	return &Entity{Type: typeTag, Attributes: map[string]Value{}}
}

// Attr returns the named attribute, reporting absence instead of failing.
func (e *Entity) Attr(name string) (Value, bool) {
	if e.Attributes == nil {
		return Value{}, false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

// Set assigns an attribute and returns the entity for chaining.
func (e *Entity) Set(name string, v Value) *Entity {
	if e.Attributes == nil {
		e.Attributes = map[string]Value{}
	}
	e.Attributes[name] = v
	return e
}

// Name returns the entity's Name attribute or an empty string.
func (e *Entity) Name() string {
	v, ok := e.Attr("Name")
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}

// Clone deep-copies the entity, keeping its ID and global ID.
func (e *Entity) Clone() *Entity {
	attrs := make(map[string]Value, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v.Clone()
	}
	return &Entity{
		ID:         e.ID,
		Type:       e.Type,
		GlobalID:   e.GlobalID,
		Attributes: attrs,
	}
}

// RelKind identifies the semantic of a directed relationship edge.
type RelKind string

const (
	// RelContainedIn links an element to its direct spatial container.
	RelContainedIn RelKind = "ContainedInStructure"
	// RelDecomposes links a spatial child to its aggregating parent.
	RelDecomposes RelKind = "Decomposes"
	// RelDefinesByProperties links a property or quantity set to the
	// element it defines.
	RelDefinesByProperties RelKind = "DefinesByProperties"
	// RelAssociatesMaterial links a material definition to an element.
	RelAssociatesMaterial RelKind = "AssociatesMaterial"
	// RelDefinesByType links a type object to its occurrences.
	RelDefinesByType RelKind = "DefinesByType"
	// RelAssigns is a generic assignment edge kept for closure repair.
	RelAssigns RelKind = "Assigns"
)

// Relationship is a typed, directed edge between two entities, stored
// by ID. Both traversal directions are indexed by the document.
type Relationship struct {
	Kind   RelKind `json:"kind"`
	Source int64   `json:"source"`
	Target int64   `json:"target"`
}
