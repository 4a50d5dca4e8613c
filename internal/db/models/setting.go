// Package models contains the database model definitions for the portal.
package models

// Setting represents a site-wide configuration setting stored in the database.
// The value is an opaque blob; typed settings structs marshal themselves into
// it under a well-known name.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique"`
	Value []byte `gorm:"type:blob"`
}
