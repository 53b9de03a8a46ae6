// File: pharmalink/models/events.go
package models

// Push channel topics consumed by the admin dashboard.
const (
	TopicDoctorStatus  = "doctorStatus"
	TopicSessionUpdate = "sessionUpdate"
)

// Session event types carried on TopicSessionUpdate.
const (
	SessionEventInitiated = "initiated"
	SessionEventCompleted = "completed"
	SessionEventCancelled = "cancelled"
)

// DoctorStatusEvent announces a change to a doctor's online flag or
// availability status. Dashboards key their updates on DoctorID, so duplicate
// delivery is harmless.
type DoctorStatusEvent struct {
	DoctorID string `json:"doctorId"`
	IsOnline bool   `json:"isOnline"`
	Status   string `json:"status"`
}

// SessionEvent announces a session lifecycle transition with the full session
// (doctor and device embedded) so observers need no follow-up fetch.
type SessionEvent struct {
	Type    string   `json:"type"`
	Session *Session `json:"session"`
}
