package models

import "time"

// Base holds the columns every versioned table shares.
// Version starts at 1 and is bumped by every successful update.
type Base struct {
	ID        uint `gorm:"primaryKey"`
	Version   uint `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revision identifies one stored state of a record.
type Revision struct {
	ID      uint
	Version uint
}

// Revision returns the identity and version the record was loaded with.
func (b Base) Revision() Revision {
	return Revision{ID: b.ID, Version: b.Version}
}

// Next is the revision a successful update of r produces.
func (r Revision) Next() Revision {
	return Revision{ID: r.ID, Version: r.Version + 1}
}
