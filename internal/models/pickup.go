package models

import "time"

// PickupStatus is the lifecycle state of a pickup request.
type PickupStatus string

const (
	StatusPending   PickupStatus = "PENDING"
	StatusScheduled PickupStatus = "SCHEDULED"
	StatusOnTheWay  PickupStatus = "ON_THE_WAY"
	StatusCompleted PickupStatus = "COMPLETED"
	StatusCancelled PickupStatus = "CANCELLED"
)

// Valid reports whether the status is a known lifecycle state.
func (s PickupStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusOnTheWay, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s PickupStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the directed edge set of the lifecycle state machine.
var transitions = map[PickupStatus][]PickupStatus{
	StatusPending:   {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay:  {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the edge s -> next is legal.
// Re-submitting the current status is not an edge; callers treat it as a no-op.
func (s PickupStatus) CanTransitionTo(next PickupStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WasteType categorises what a resident wants collected.
type WasteType string

const (
	WasteGeneral      WasteType = "General Household"
	WasteRecyclable   WasteType = "Recyclable (Plastic/Paper)"
	WasteOrganic      WasteType = "Organic/Food Waste"
	WasteHazardous    WasteType = "Hazardous/Medical"
	WasteConstruction WasteType = "Construction/Bulky"
)

// Valid reports whether the waste type is recognised.
func (w WasteType) Valid() bool {
	switch w {
	case WasteGeneral, WasteRecyclable, WasteOrganic, WasteHazardous, WasteConstruction:
		return true
	}
	return false
}

// Priority ranks a pickup request.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether the priority is recognised.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Coordinates is an optional map position for a pickup address.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PickupRequest is the central record of the portal. It is never deleted;
// cancellation is a terminal status, not removal.
type PickupRequest struct {
	ID            string       `db:"id" json:"id"`
	ResidentID    string       `db:"resident_id" json:"resident_id"`
	ResidentName  string       `db:"resident_name" json:"resident_name"`
	OperatorID    *string      `db:"operator_id" json:"operator_id,omitempty"`
	OperatorName  *string      `db:"operator_name" json:"operator_name,omitempty"`
	Zone          string       `db:"zone" json:"zone"`
	HouseNumber   string       `db:"house_number" json:"house_number"`
	StreetName    string       `db:"street_name" json:"street_name"`
	Landmark      string       `db:"landmark" json:"landmark"`
	ContactPhone  string       `db:"contact_phone" json:"contact_phone"`
	Lat           *float64     `db:"lat" json:"-"`
	Lng           *float64     `db:"lng" json:"-"`
	WasteType     WasteType    `db:"waste_type" json:"waste_type"`
	Priority      Priority     `db:"priority" json:"priority"`
	ScheduledDate string       `db:"scheduled_date" json:"scheduled_date"`
	Status        PickupStatus `db:"status" json:"status"`
	Notes         *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// Coordinates returns the optional map position when both parts are set.
func (p *PickupRequest) Coordinates() *Coordinates {
	if p.Lat == nil || p.Lng == nil {
		return nil
	}
	return &Coordinates{Lat: *p.Lat, Lng: *p.Lng}
}

// PickupFilter captures filtering criteria for listing pickup requests.
type PickupFilter struct {
	ResidentID string
	OperatorID string
	Zone       string
	Status     *PickupStatus
	Page       int
	PageSize   int
}
