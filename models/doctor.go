// File: pharmalink/models/doctor.go
package models

import "time"

// Doctor availability states. A doctor is matchable only when the status is
// available and the online flag is set.
const (
	DoctorAvailable = "available"
	DoctorBusy      = "busy"
)

type Doctor struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Email          string    `bson:"email" json:"email"`
	Password       string    `bson:"password" json:"-"`
	Specialization string    `bson:"specialization" json:"specialization,omitempty"`
	IsOnline       bool      `bson:"isOnline" json:"isOnline"`
	Status         string    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Matchable reports whether the doctor can be paired into a session.
func (d *Doctor) Matchable() bool {
	return d.IsOnline && d.Status == DoctorAvailable
}
