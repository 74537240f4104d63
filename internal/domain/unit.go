package domain

import "time"

type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "AVAILABLE"
	UnitStatusReserved  UnitStatus = "RESERVED"
	UnitStatusInProcess UnitStatus = "IN_PROCESS"
	UnitStatusLive      UnitStatus = "LIVE"
	UnitStatusBooked    UnitStatus = "BOOKED"
)

// UnitWorkflowFitterAssigned marks that installation has been handed to a
// fitter. Workflow state is tracked separately from availability status.
const UnitWorkflowFitterAssigned = "FITTER_ASSIGNED"

type Unit struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	City          string     `json:"city"`
	Area          string     `json:"area"`
	Landmark      string     `json:"landmark"`
	RoadName      string     `json:"road_name"`
	Side          string     `json:"side"`
	WidthCm       int32      `json:"width_cm"`
	HeightCm      int32      `json:"height_cm"`
	GroupID       *string    `json:"group_id,omitempty"` // co-owned sibling set
	Status        UnitStatus `json:"status"`
	WorkflowState *string    `json:"workflow_state,omitempty"`
	BookedByID    *string    `json:"booked_by_id,omitempty"`
	BookedAt      *time.Time `json:"booked_at,omitempty"`
	CreatedOn     time.Time  `json:"created_on"`
	UpdatedOn     time.Time  `json:"updated_on"`
}
