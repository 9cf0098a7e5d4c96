package models

import "time"

type CallStatus = string

const (
	CallStatusNew      = "new"
	CallStatusAnswered = "answered"
	CallStatusRejected = "rejected"
	CallStatusMissed   = "missed"
	CallStatusEnded    = "ended"
)

type CallSession struct {
	BaseModel

	CallerID      uint       `json:"caller_id"`
	ReceiverID    uint       `json:"receiver_id"`
	CallerPhone   string     `json:"caller_phone"`
	ReceiverPhone string     `json:"receiver_phone"`
	Status        CallStatus `json:"status"`
	StartedAt     *time.Time `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`

	Caller   Account `json:"caller"`
	Receiver Account `json:"receiver"`
}

func (v CallSession) IsTerminal() bool {
	switch v.Status {
	case CallStatusRejected, CallStatusMissed, CallStatusEnded:
		return true
	default:
		return false
	}
}

// Duration is the billable time of the session, always derived from the
// answered and ended timestamps. A session that was never answered lasts zero
// regardless of how long it rang.
func (v CallSession) Duration() time.Duration {
	if v.StartedAt == nil || v.EndedAt == nil {
		return 0
	}
	return v.EndedAt.Sub(*v.StartedAt)
}

// BilledMinutes keeps the exact fractional value, a ten second call costs
// one sixth of a minute instead of a rounded-up full one.
func (v CallSession) BilledMinutes() float64 {
	return v.Duration().Seconds() / 60
}
