// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEvent is one immutable record in the append-only event log. Rows are
// written inside the same database transaction as the state change they
// describe, so a rolled-back operation leaves no events behind. GlobalPos is
// a bigserial and carries the ledger's total commit order; (TxID, Seq) is
// the projector's dedupe key.
type LedgerEvent struct {
	GlobalPos uint64    `json:"global_pos" gorm:"primaryKey;autoIncrement"`
	TxID      uuid.UUID `json:"tx_id" gorm:"type:uuid;not null;index:idx_ledger_events_tx_seq,unique"`
	Seq       uint32    `json:"seq" gorm:"not null;index:idx_ledger_events_tx_seq,unique"`
	Kind      string    `json:"kind" gorm:"size:40;not null;index"`
	Payload   []byte    `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Sequence backs the monotonic id spaces (asset, license token, dispute).
// Rows are seeded at migration time and bumped with UPDATE .. RETURNING
// inside the allocating transaction.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:40"`
	Value uint64 `gorm:"not null;default:0"`
}
