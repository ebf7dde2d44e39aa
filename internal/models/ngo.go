package models

import "time"

// NGO is a donation-receiving partner organisation
type NGO struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Address      string    `json:"address" yaml:"address"`
	Latitude     float64   `json:"latitude" yaml:"latitude"`
	Longitude    float64   `json:"longitude" yaml:"longitude"`
	ContactPhone *string   `json:"contact_phone" yaml:"contact_phone"`
	ContactEmail *string   `json:"contact_email" yaml:"contact_email"`
	Description  *string   `json:"description" yaml:"description"`
	CapacityKg   *float64  `json:"capacity_kg" yaml:"capacity_kg"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
}
