package models

import "time"

type Trip struct {
	ID             int64      `json:"id"`
	OwnerID        int64      `json:"ownerId"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	SourceTripID   *int64     `json:"sourceTripId,omitempty"`
	ShareExpiresAt *time.Time `json:"shareExpiresAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Steps          []Step     `json:"steps,omitempty"`
}

// IsShareSnapshot reports whether t is a frozen copy created by a share.
func (t Trip) IsShareSnapshot() bool {
	return t.ShareExpiresAt != nil
}

type TripInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// TripUpdate supports PATCH-style updates via key presence.
type TripUpdate struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// StepKind names the service that owns the referenced record.
type StepKind string

const (
	StepTravel StepKind = "travel"
	StepSleep  StepKind = "sleep"
	StepEat    StepKind = "eat"
	StepDrink  StepKind = "drink"
	StepEnjoy  StepKind = "enjoy"
)

func (k StepKind) Valid() bool {
	switch k {
	case StepTravel, StepSleep, StepEat, StepDrink, StepEnjoy:
		return true
	}
	return false
}

// StepStatus is the outcome of the last verification.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepOK       StepStatus = "ok"
	StepModified StepStatus = "modified"
	StepMissing  StepStatus = "missing"
)

type Step struct {
	ID         int64      `json:"id"`
	TripID     int64      `json:"tripId"`
	Position   int        `json:"position"`
	Kind       StepKind   `json:"kind"`
	RefID      int64      `json:"refId"`
	Title      string     `json:"title"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
	Notes      string     `json:"notes"`
	Status     StepStatus `json:"status"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
}

type StepInput struct {
	Kind     StepKind   `json:"kind"`
	RefID    int64      `json:"refId"`
	Title    string     `json:"title"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	Notes    string     `json:"notes"`
	Position int        `json:"position"`
}

type StepUpdate struct {
	Kind     *StepKind  `json:"kind"`
	RefID    *int64     `json:"refId"`
	Title    *string    `json:"title"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
	Notes    *string    `json:"notes"`
	Position *int       `json:"position"`
}

// ShareCode is returned by a share and consumed by an import.
type ShareCode struct {
	Code      string    `json:"code"`
	TripID    int64     `json:"tripId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StepCheck is the per-step line of a verification report.
type StepCheck struct {
	StepID int64      `json:"stepId"`
	Kind   StepKind   `json:"kind"`
	RefID  int64      `json:"refId"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

type VerificationReport struct {
	TripID   int64       `json:"tripId"`
	Checked  int         `json:"checked"`
	OK       int         `json:"ok"`
	Modified int         `json:"modified"`
	Missing  int         `json:"missing"`
	Failed   int         `json:"failed"`
	Steps    []StepCheck `json:"steps"`
}
