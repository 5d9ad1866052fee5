package model

import "time"

// Reflection holds the optional notes a user attaches when a session ends.
// The zero value means no reflection was recorded.
type Reflection struct {
	Practiced string `yaml:"practiced" json:"practiced,omitempty"`
	Learned   string `yaml:"learned" json:"learned,omitempty"`
	NextFocus string `yaml:"next_focus" json:"next_focus,omitempty"`
	Notes     string `yaml:"notes" json:"notes,omitempty"`
}

// IsZero reports whether no reflection field is set.
func (reflection Reflection) IsZero() bool {
	return reflection == Reflection{}
}

// Session is one completed practice block as stored in the ledger.
// A session that is still running lives only inside the timer state
// machine and has no Session value until it is stopped.
type Session struct {
	ID              string     `json:"id"`
	SkillName       string     `json:"skill_name"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	DurationMinutes float64    `json:"duration_minutes"`
	Reflection      Reflection `json:"reflection"`
}

// SessionPatch describes an edit to a persisted session. Nil fields are
// left untouched. Editing either timestamp recomputes the duration.
type SessionPatch struct {
	StartTime *time.Time
	EndTime   *time.Time
	Practiced *string
	Learned   *string
	NextFocus *string
	Notes     *string
}
