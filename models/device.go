// File: pharmalink/models/device.go
package models

import "time"

// Device states. Active means the kiosk is idle and usable; busy means it is
// currently serving a session.
const (
	DeviceActive = "active"
	DeviceBusy   = "busy"
)

// GPS is a device location fix reported by the kiosk.
type GPS struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Device struct {
	DeviceID   string    `bson:"deviceId" json:"deviceId"`
	GPS        GPS       `bson:"gps" json:"gps"`
	Status     string    `bson:"status" json:"status"`
	LastActive time.Time `bson:"lastActive" json:"lastActive"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
