package ifc

// Document is an in-memory entity graph: entities in declaration order,
// typed relationships, and a forward plus inverse adjacency index.
// Reads are safe to share across goroutines as long as no writer is
// active; extraction treats source documents as immutable snapshots.
type Document struct {
	schema   string
	header   map[string]string
	entities []*Entity
	byID     map[int64]*Entity
	rels     []Relationship
	forward  map[int64][]Relationship
	inverse  map[int64][]Relationship
	nextID   int64
}

// NewDocument creates an empty document of the given schema.
func NewDocument(schema string) *Document {
	return &Document{
		schema:  schema,
		header:  map[string]string{},
		byID:    map[int64]*Entity{},
		forward: map[int64][]Relationship{},
		inverse: map[int64][]Relationship{},
		nextID:  1,
	}
}

// Schema returns the document's schema tag.
func (d *Document) Schema() string { return d.schema }

// Header returns the header metadata map.
func (d *Document) Header() map[string]string { return d.header }

// SetHeader stores a header metadata entry.
func (d *Document) SetHeader(key, value string) {
	d.header[key] = value
}

// Add inserts an entity. A zero ID is assigned the next free ID; adding
// an ID that already exists is a no-op returning the stored entity, so
// closure passes can re-add without duplicating.
func (d *Document) Add(e *Entity) *Entity {
	if e.ID != 0 {
		if existing, ok := d.byID[e.ID]; ok {
			return existing
		}
		if e.ID >= d.nextID {
			d.nextID = e.ID + 1
		}
	} else {
		e.ID = d.nextID
		d.nextID++
	}
	d.entities = append(d.entities, e)
	d.byID[e.ID] = e
	return e
}

// Remove deletes an entity and every relationship touching it.
func (d *Document) Remove(e *Entity) {
	if _, ok := d.byID[e.ID]; !ok {
		return
	}
	delete(d.byID, e.ID)
	for i, stored := range d.entities {
		if stored.ID == e.ID {
			d.entities = append(d.entities[:i], d.entities[i+1:]...)
			break
		}
	}
	kept := d.rels[:0]
	for _, rel := range d.rels {
		if rel.Source == e.ID || rel.Target == e.ID {
			continue
		}
		kept = append(kept, rel)
	}
	d.rels = kept
	d.reindex()
}

// Entity returns the entity with the given ID, or nil.
func (d *Document) Entity(id int64) *Entity {
	return d.byID[id]
}

// Contains reports whether an entity with the given ID is present.
func (d *Document) Contains(id int64) bool {
	_, ok := d.byID[id]
	return ok
}

// Entities returns all entities in declaration order. The returned
// slice must not be mutated.
func (d *Document) Entities() []*Entity {
	return d.entities
}

// Len returns the number of entities.
func (d *Document) Len() int { return len(d.entities) }

// ByType returns entities whose type equals or specializes the tag, in
// declaration order.
func (d *Document) ByType(tag string) []*Entity {
	var out []*Entity
	for _, e := range d.entities {
		if IsA(e.Type, tag) {
			out = append(out, e)
		}
	}
	return out
}

// Relate adds a typed directed edge between two entity IDs. Edges to
// absent entities are dropped.
func (d *Document) Relate(kind RelKind, source, target int64) {
	if !d.Contains(source) || !d.Contains(target) {
		return
	}
	rel := Relationship{Kind: kind, Source: source, Target: target}
	d.rels = append(d.rels, rel)
	d.forward[source] = append(d.forward[source], rel)
	d.inverse[target] = append(d.inverse[target], rel)
}

// Relationships returns every relationship in declaration order.
func (d *Document) Relationships() []Relationship {
	return d.rels
}

// RelationshipsOf returns an entity's declared (outgoing) relationships.
func (d *Document) RelationshipsOf(e *Entity) []Relationship {
	return d.forward[e.ID]
}

// InverseRelationshipsOf returns the relationships pointing at an
// entity. This index is what makes referential-closure repair possible
// during extraction.
func (d *Document) InverseRelationshipsOf(e *Entity) []Relationship {
	return d.inverse[e.ID]
}

func (d *Document) reindex() {
	d.forward = make(map[int64][]Relationship, len(d.byID))
	d.inverse = make(map[int64][]Relationship, len(d.byID))
	for _, rel := range d.rels {
		d.forward[rel.Source] = append(d.forward[rel.Source], rel)
		d.inverse[rel.Target] = append(d.inverse[rel.Target], rel)
	}
}
