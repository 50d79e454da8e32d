// README: Archived trip records, one per cancelled or completed trip.
package history

import (
	"errors"
	"fmt"
	"time"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/types"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrRecordNotFound = errors.New("history record not found")

// Record is immutable once appended. Chat messages are not archived.
type Record struct {
	TripID          types.ID           `json:"trip_id"`
	ReceiptNo       string             `json:"receipt_no"`
	PickupName      string             `json:"pickup_name"`
	DestinationName string             `json:"destination_name"`
	Class           fleet.VehicleClass `json:"class"`
	DistanceMeters  float64            `json:"distance_meters"`
	Fare            types.Money        `json:"fare"`
	Status          Status             `json:"status"`
	Vehicle         fleet.Vehicle      `json:"vehicle"`
	DriverName      string             `json:"driver_name"`
	Rating          *int               `json:"rating,omitempty"`
	PaymentMethod   string             `json:"payment_method"`
	CreatedAt       time.Time          `json:"created_at"`
	ArchivedAt      time.Time          `json:"archived_at"`
}

// ReceiptNumber is "PH-" followed by the last eight digits of t in epoch milliseconds.
func ReceiptNumber(t time.Time) string {
	ms := fmt.Sprintf("%d", t.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "PH-" + ms
}
