package models

// RecipientKind tags which collection a recipient id lives in. An empty kind
// means the caller only has a raw id and the directory must probe every
// collection.
type RecipientKind string

const (
	KindUser  RecipientKind = "user"
	KindStaff RecipientKind = "staff"
	KindAdmin RecipientKind = "admin"
)

// RecipientRef identifies one recipient across the three account
// collections. Prefer a tagged ref wherever the caller already knows the
// kind; untagged refs force an exhaustive directory probe.
type RecipientRef struct {
	Kind RecipientKind `json:"kind,omitempty"`
	ID   string        `json:"id"`
}

func Untagged(id string) RecipientRef {
	return RecipientRef{ID: id}
}

// Contact is the directory's view of a recipient: enough to address the
// secondary channels and label chat messages.
type Contact struct {
	ID    string        `json:"id"`
	Kind  RecipientKind `json:"kind"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Phone string        `json:"phone,omitempty"`
}
