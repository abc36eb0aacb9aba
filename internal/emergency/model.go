package emergency

import (
	"context"
	"time"

	"github.com/siaga-app/siaga/internal/apperr"
)

// Service types a user can report.
const (
	TypePolice  = "police"
	TypeFire    = "fire"
	TypeMedical = "medical"
)

// StatusInitiated is the status of a freshly reported emergency.
const StatusInitiated = "initiated"

// Hotline is a dialable emergency service.
type Hotline struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

var hotlines = []Hotline{
	{Type: TypePolice, Name: "Police", Number: "110"},
	{Type: TypeFire, Name: "Fire Department", Number: "113"},
	{Type: TypeMedical, Name: "Ambulance", Number: "119"},
}

// Log records one reported emergency.
type Log struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"emergency_type"`
	Location  string    `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// ReportInput describes an emergency being reported.
type ReportInput struct {
	UserID   int64  `json:"-"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// Report is the outcome of reporting an emergency.
type Report struct {
	Log      Log    `json:"log"`
	Dial     string `json:"dial"`
	Notified int    `json:"notified_contacts"`
}

// Repository persists emergency logs.
type Repository interface {
	Create(ctx context.Context, log Log) (int64, error)
	// ListByUser returns the user's logs newest first.
	ListByUser(ctx context.Context, userID int64) ([]Log, error)
}

var errUnknownType = apperr.Validation("Unknown emergency type")
