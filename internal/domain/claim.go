package domain

import "time"

type ClaimStatus string

const (
	ClaimStatusActive    ClaimStatus = "ACTIVE"
	ClaimStatusConfirmed ClaimStatus = "CONFIRMED"
	ClaimStatusExpired   ClaimStatus = "EXPIRED"
	ClaimStatusCancelled ClaimStatus = "CANCELLED"
)

type StageStatus string

const (
	StagePending    StageStatus = "PENDING"
	StageInProgress StageStatus = "IN_PROGRESS"
	StageCompleted  StageStatus = "COMPLETED"
)

// Valid reports whether s is a known workflow stage.
func (s StageStatus) Valid() bool {
	switch s {
	case StagePending, StageInProgress, StageCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows same-state updates and single forward steps.
// Skipping a stage or moving backwards is never legal.
func (s StageStatus) CanTransitionTo(next StageStatus) bool {
	if s == next {
		return true
	}
	return (s == StagePending && next == StageInProgress) ||
		(s == StageInProgress && next == StageCompleted)
}

// AllowedDurations are the bookable claim lengths in months.
var AllowedDurations = []int32{3, 6, 9, 12}

func AllowedDuration(months int32) bool {
	for _, d := range AllowedDurations {
		if months == d {
			return true
		}
	}
	return false
}

type ProofImage struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Claim is a provisional, time-boxed hold by one agent on one unit for a
// date range. Claims are queue-ordered per unit and never physically deleted.
type Claim struct {
	ID             string      `json:"id"`
	UnitID         string      `json:"unit_id"`
	AgentID        string      `json:"agent_id"`
	ClientID       string      `json:"client_id"`
	DateFrom       time.Time   `json:"date_from"`
	DateTo         time.Time   `json:"date_to"`
	DurationMonths int32       `json:"duration_months"`
	Notes          string      `json:"notes"`
	Status         ClaimStatus `json:"status"`
	QueuePosition  int32       `json:"queue_position"`
	ExpiresAt      time.Time   `json:"expires_at"`

	// Workflow fields, only meaningful once Status is CONFIRMED.
	DesignerID         *string      `json:"designer_id,omitempty"`
	DesignStatus       StageStatus  `json:"design_status"`
	FitterID           *string      `json:"fitter_id,omitempty"`
	FitterStatus       StageStatus  `json:"fitter_status"`
	FitterAssignedAt   *time.Time   `json:"fitter_assigned_at,omitempty"`
	FitterStartedAt    *time.Time   `json:"fitter_started_at,omitempty"`
	FitterCompletedAt  *time.Time   `json:"fitter_completed_at,omitempty"`
	InstallationProofs []ProofImage `json:"installation_proofs,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
