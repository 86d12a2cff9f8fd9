package models

// Domain models stored inside the users-database record. JSON field names are
// the persisted wire format and must stay stable across releases.

// RoleType is the single role category a profile registers with.
type RoleType string

const (
	RoleWorker     RoleType = "worker"
	RoleContractor RoleType = "contractor"
	RoleEmployer   RoleType = "employer"
)

var roleLabels = map[RoleType]string{
	RoleWorker:     "मज़दूर",
	RoleContractor: "ठेकेदार",
	RoleEmployer:   "काम देने वाला",
}

// Valid reports whether r is one of the known role categories.
func (r RoleType) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the display label shown for the role.
func (r RoleType) Label() string {
	return roleLabels[r]
}

// WorkStatus is the lifecycle state of a work history entry.
type WorkStatus string

const (
	StatusOngoing   WorkStatus = "ongoing"
	StatusReached   WorkStatus = "reached"
	StatusSettled   WorkStatus = "settled"
	StatusCompleted WorkStatus = "completed"
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// WorkHistoryItem records one accepted job for a profile. ID mirrors the
// originating job id as text.
type WorkHistoryItem struct {
	ID       string     `json:"id"`
	Role     string     `json:"role"`
	Price    string     `json:"price"`
	Location string     `json:"location"`
	Distance string     `json:"distance"`
	Days     string     `json:"days"`
	Status   WorkStatus `json:"status"`
	Date     string     `json:"date"`
}

type Profile struct {
	Name         string            `json:"name"`
	Roles        []string          `json:"roles"`
	RoleType     RoleType          `json:"roleType"`
	Photo        string            `json:"photo"`
	Rating       float64           `json:"rating"`
	TotalRatings int               `json:"totalRatings"`
	Earnings     int64             `json:"earnings"`
	WorkDays     int               `json:"workDays"`
	Level        string            `json:"level"`
	WorkHistory  []WorkHistoryItem `json:"workHistory"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	Coords       *Coords           `json:"coords,omitempty"`

	// contractor and employer only
	JobsPosted   *int   `json:"jobsPosted,omitempty"`
	WorkersHired *int   `json:"workersHired,omitempty"`
	TotalPayment *int64 `json:"totalPayment,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.Roles = append([]string(nil), p.Roles...)
	out.WorkHistory = make([]WorkHistoryItem, len(p.WorkHistory))
	copy(out.WorkHistory, p.WorkHistory)
	if p.Coords != nil {
		c := *p.Coords
		out.Coords = &c
	}
	if p.JobsPosted != nil {
		v := *p.JobsPosted
		out.JobsPosted = &v
	}
	if p.WorkersHired != nil {
		v := *p.WorkersHired
		out.WorkersHired = &v
	}
	if p.TotalPayment != nil {
		v := *p.TotalPayment
		out.TotalPayment = &v
	}
	return &out
}

// HistoryItem returns the entry with the given id, or nil.
func (p *Profile) HistoryItem(id string) *WorkHistoryItem {
	for i := range p.WorkHistory {
		if p.WorkHistory[i].ID == id {
			return &p.WorkHistory[i]
		}
	}
	return nil
}

// Job is a postable unit of work shown on the board.
type Job struct {
	ID            int64  `json:"id" yaml:"id"`
	Role          string `json:"role" yaml:"role"`
	Pay           string `json:"pay" yaml:"pay"`
	PayType       string `json:"payType,omitempty" yaml:"pay_type,omitempty"`
	Distance      string `json:"distance,omitempty" yaml:"distance,omitempty"`
	Duration      string `json:"duration" yaml:"duration"`
	Progress      int    `json:"progress" yaml:"progress"`
	Type          string `json:"type" yaml:"type"`
	WorkersNeeded int    `json:"workersNeeded,omitempty" yaml:"workers_needed,omitempty"`
}

// ValidPhone reports whether s is exactly ten ASCII digits.
func ValidPhone(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
