// internal/events/recorder.go
package events

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipregistry-backend/internal/models"
)

// Recorder accumulates the events of one ledger transaction and flushes them
// as rows in the same database transaction. Rollback of the transaction
// discards the rows, so failed operations emit nothing.
type Recorder struct {
	txID    uuid.UUID
	pending []Payload
}

// NewRecorder starts a recorder for a fresh transaction id.
func NewRecorder() *Recorder {
	return &Recorder{txID: uuid.New()}
}

// TxID returns the transaction id events will be keyed under.
func (r *Recorder) TxID() uuid.UUID { return r.txID }

// Emit queues a payload. Seq is assigned by queue order, starting at 0.
func (r *Recorder) Emit(p Payload) {
	r.pending = append(r.pending, p)
}

// Flush writes all queued events using tx. Must be called inside the ledger
// operation's transaction, after every state mutation has succeeded.
func (r *Recorder) Flush(tx *gorm.DB) error {
	for i, p := range r.pending {
		data, err := Encode(p)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.Kind(), err)
		}
		row := models.LedgerEvent{
			TxID:    r.txID,
			Seq:     uint32(i),
			Kind:    string(p.Kind()),
			Payload: data,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("append %s: %w", p.Kind(), err)
		}
	}
	return nil
}
