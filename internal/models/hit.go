package models

import "time"

// ReportStatus tracks the lifecycle of a hit report.
// Transitions are forward only — there is no path back to unsold.
type ReportStatus string

const (
	ReportStatusUnsold    ReportStatus = "unsold"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusDisputed  ReportStatus = "disputed"
	ReportStatusCancelled ReportStatus = "cancelled"
)

// ValidStatusTransition reports whether a report may move from one status to
// another. The only permitted moves are out of unsold.
func ValidStatusTransition(from, to ReportStatus) bool {
	if from != ReportStatusUnsold {
		return false
	}
	switch to {
	case ReportStatusCompleted, ReportStatusDisputed, ReportStatusCancelled:
		return true
	}
	return false
}

// CrewRole is a participant's role on a hit.
type CrewRole string

const (
	RolePilot       CrewRole = "pilot"
	RoleGunner      CrewRole = "gunner"
	RoleBoarder     CrewRole = "boarder"
	RoleEscort      CrewRole = "escort"
	RoleStorage     CrewRole = "storage"
	RoleGeneralCrew CrewRole = "general_crew"
)

// roleRatios are the fixed weights used to split earnings among crew.
var roleRatios = map[CrewRole]float64{
	RolePilot:       0.8,
	RoleGunner:      0.8,
	RoleBoarder:     1.2,
	RoleEscort:      1.1,
	RoleStorage:     1.0,
	RoleGeneralCrew: 1.0,
}

// Ratio returns the earnings weight for the role. Unknown roles weigh the
// same as general crew.
func (r CrewRole) Ratio() float64 {
	if ratio, ok := roleRatios[r]; ok {
		return ratio
	}
	return roleRatios[RoleGeneralCrew]
}

// Valid reports whether the role is one of the known crew roles.
func (r CrewRole) Valid() bool {
	_, ok := roleRatios[r]
	return ok
}

// HitReport is one recorded cargo-theft incident.
type HitReport struct {
	ID           string       `json:"id"`
	TargetHandle string       `json:"target_handle"`
	ReporterID   string       `json:"reporter_id"`
	CargoType    string       `json:"cargo_type"`
	Boxes        int          `json:"boxes"`
	UnitsPerBox  int          `json:"units_per_box"`
	SellLocation string       `json:"sell_location"`
	CurrentPrice float64      `json:"current_price"`
	Notes        string       `json:"notes,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	GuildID      string       `json:"guild_id"`
	Status       ReportStatus `json:"status"`
	SellerID     string       `json:"seller_id"`
}

// TotalValue returns boxes * unitsPerBox * currentPrice. A missing box size
// falls back to DefaultUnitsPerBox.
func (r *HitReport) TotalValue() float64 {
	upb := r.UnitsPerBox
	if upb <= 0 {
		upb = DefaultUnitsPerBox
	}
	return float64(r.Boxes) * float64(upb) * r.CurrentPrice
}

// CrewMember is one participant on a hit with their computed earnings share.
// Rows are created once at report finalization and never mutated.
type CrewMember struct {
	HitID     string   `json:"hit_id"`
	UserID    string   `json:"user_id"`
	Role      CrewRole `json:"role"`
	RoleRatio float64  `json:"role_ratio"`
	Share     float64  `json:"share"`
}

// PiracyHit is an append-only attribution record against an individual or
// organization. ReportID keys the fan-out for idempotent replay.
type PiracyHit struct {
	ID           string    `json:"id"`
	ReportID     string    `json:"report_id"`
	TargetID     string    `json:"target_id"`
	IsOrg        bool      `json:"is_org"`
	HitDate      time.Time `json:"hit_date"`
	Details      string    `json:"details"`
	OrgID        string    `json:"org_id,omitempty"`
	MemberHandle string    `json:"member_handle,omitempty"`
}

// Payment is an append-only payout record against a hit.
type Payment struct {
	ID         string    `json:"id"`
	HitID      string    `json:"hit_id"`
	PayerID    string    `json:"payer_id"`
	ReceiverID string    `json:"receiver_id"`
	Amount     int64     `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// CargoStorage tracks which crew member currently holds unsold cargo.
// One active holder per report.
type CargoStorage struct {
	HitID     string    `json:"hit_id"`
	HolderID  string    `json:"holder_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Balance summarizes what a user has earned versus received in a guild.
// Received may exceed share — overpayment is allowed and simply yields a
// negative outstanding figure.
type Balance struct {
	UserID        string  `json:"user_id"`
	GuildID       string  `json:"guild_id"`
	TotalShare    float64 `json:"total_share"`
	TotalReceived float64 `json:"total_received"`
}

// Outstanding returns what is still owed to the user.
func (b *Balance) Outstanding() float64 {
	return b.TotalShare - b.TotalReceived
}

// ReportPage is one page of reports with pagination totals.
type ReportPage struct {
	Reports    []*HitReport `json:"reports"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
