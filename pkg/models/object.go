package models

import "time"

// ObjectKind classifies a database object for documentation purposes.
type ObjectKind string

const (
	KindRoutine  ObjectKind = "routine"
	KindView     ObjectKind = "view"
	KindTrigger  ObjectKind = "trigger"
	KindTable    ObjectKind = "table"
	KindSequence ObjectKind = "sequence"
	KindOther    ObjectKind = "other"
)

// DisplayName returns the uppercase keyword used in synthesized headers.
func (k ObjectKind) DisplayName() string {
	switch k {
	case KindRoutine:
		return "PROCEDURE"
	case KindView:
		return "VIEW"
	case KindTrigger:
		return "TRIGGER"
	case KindTable:
		return "TABLE"
	case KindSequence:
		return "SEQUENCE"
	default:
		return "OBJECT"
	}
}

// ObjectIdentity is the resolved container+name+kind reference to a single
// database object. Resolved once at lookup time and never mutated afterwards.
type ObjectIdentity struct {
	Container string     `json:"container"`
	Name      string     `json:"name"`
	Kind      ObjectKind `json:"kind"`
}

// QualifiedName returns "container.name" for logs and headers.
func (id ObjectIdentity) QualifiedName() string {
	if id.Container == "" {
		return id.Name
	}
	return id.Container + "." + id.Name
}

// ObjectDefinition holds the full definition text of one object.
// CreatedAt is nil when the store cannot report a creation timestamp.
// Synthesis never mutates a definition in place; it produces a new body.
type ObjectDefinition struct {
	Identity  ObjectIdentity `json:"identity"`
	Text      string         `json:"text"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// MetadataEntry is a key/value property scoped to one object identity.
// Keys are opaque; classification is prefix matching, case-insensitive.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
