package entities

import "time"

// Place is the shared venue record crowd edits are applied to
type Place struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id,omitempty" db:"owner_id"`
	Kind         PlaceKind `json:"kind" db:"kind"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Address      string    `json:"address" db:"address"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	OpeningHours string    `json:"opening_hours" db:"opening_hours"`
	Website      string    `json:"website" db:"website"`
	SurfaceType  string    `json:"surface_type" db:"surface_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EditableFields lists the place columns crowd edits may target
var EditableFields = []string{
	"name",
	"description",
	"address",
	"phone_number",
	"opening_hours",
	"website",
	"surface_type",
}

// IsEditableField reports whether field may be changed through an edit proposal
func IsEditableField(field string) bool {
	for _, f := range EditableFields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldValue returns the current value of an editable field
func (p *Place) FieldValue(field string) (string, bool) {
	switch field {
	case "name":
		return p.Name, true
	case "description":
		return p.Description, true
	case "address":
		return p.Address, true
	case "phone_number":
		return p.PhoneNumber, true
	case "opening_hours":
		return p.OpeningHours, true
	case "website":
		return p.Website, true
	case "surface_type":
		return p.SurfaceType, true
	}
	return "", false
}
