package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdvertisementID identifies one advertised payload.
// It wraps uuid.UUID to provide type safety at the domain layer.
type AdvertisementID uuid.UUID

// String returns the canonical textual form of the ID.
func (id AdvertisementID) String() string { return uuid.UUID(id).String() }

// Advertisement is a URL together with every byte representation the beacon
// broadcasts for it.
type Advertisement struct {
	ID AdvertisementID
	// URL is the plain text URL.
	URL string
	// Payload is the URL as encoded by urlcodec.
	Payload []byte
	// Frame is the Eddystone-URL frame wrapping Payload.
	Frame []byte
	// Data is the BLE advertising data carrying Frame.
	Data    []byte
	TxPower int8

	// Rotating is set when URL is derived from the current time. Window and
	// NextRotation are only meaningful then.
	Rotating     bool
	Window       int64
	NextRotation time.Time

	CreatedAt time.Time
}
