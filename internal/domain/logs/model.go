package logs

import "time"

// Type tags an activity log entry.
type Type string

const (
	TypeCreate   Type = "create"
	TypeUpdate   Type = "update"
	TypeDelete   Type = "delete"
	TypeTransfer Type = "transfer"
	TypeImport   Type = "import"
	TypeOther    Type = "other"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCreate, TypeUpdate, TypeDelete, TypeTransfer, TypeImport, TypeOther:
		return true
	}
	return false
}

// Entry is an immutable audit record. ItemName is a snapshot taken when the
// entry was written; it is never re-synced after a rename or delete.
type Entry struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"timeISO"`
	Type     Type      `json:"type"`
	ItemID   string    `json:"itemId,omitempty"`
	ItemName string    `json:"itemName,omitempty"`
	Qty      int       `json:"qty,omitempty"`
	Details  string    `json:"details,omitempty"`
}
