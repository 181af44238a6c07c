// internal/database/sequence.go
package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/ipregistry-backend/internal/models"
)

// Monotonic id spaces. Assets and derivatives deliberately share one space:
// a derivative is an IPAsset with extra provenance.
const (
	SeqIPAsset      = "ip_asset"
	SeqLicenseToken = "license_token"
	SeqDispute      = "dispute"
)

// Sequences allocates monotonic ids from the sequences table. It is
// constructed once, after migrations have seeded the rows, and handed to each
// service at construction rather than living as package state.
type Sequences struct{}

func NewSequences() *Sequences {
	return &Sequences{}
}

// Next bumps and returns the named sequence inside tx. The UPDATE takes a row
// lock, so two allocating transactions serialize and ids are never reused
// even when one of them rolls back after the other commits.
func (s *Sequences) Next(tx *gorm.DB, name string) (uint64, error) {
	var value uint64
	err := tx.Raw("UPDATE sequences SET value = value + 1 WHERE name = ? RETURNING value", name).
		Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("sequence %s not seeded", name)
	}
	return value, nil
}

func seedSequences(db *gorm.DB) error {
	for _, name := range []string{SeqIPAsset, SeqLicenseToken, SeqDispute} {
		row := models.Sequence{Name: name, Value: 0}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
