// File: pharmalink/models/session.go
package models

import "time"

// Session lifecycle states. Transitions are monotone: active may move to
// completed or cancelled, terminal states never change again.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Session pairs one doctor with one kiosk device for a single patient
// interaction. Doctor and Device are populated copies of the referenced
// records for the wire; DoctorID/DeviceID are the authoritative references.
type Session struct {
	ID          string     `bson:"id" json:"id"`
	DoctorID    string     `bson:"doctorId" json:"doctorId"`
	DeviceID    string     `bson:"deviceId" json:"deviceId"`
	PatientName string     `bson:"patientName" json:"patientName"`
	Status      string     `bson:"status" json:"status"`
	StartedAt   time.Time  `bson:"startedAt" json:"startedAt"`
	EndedAt     *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`

	Doctor *Doctor `bson:"-" json:"doctor,omitempty"`
	Device *Device `bson:"-" json:"device,omitempty"`
}

// Terminal reports whether the session has reached a final state.
func (s *Session) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}
