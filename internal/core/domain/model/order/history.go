package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// HistoryEntry is one record in an order's status ledger: the status the
// order entered, when, optionally where (the reporting agent's position), and
// a short human-readable note. Entries are immutable once appended and the
// ledger is strictly append-only, so it doubles as an audit trail of the
// delivery.
type HistoryEntry struct {
	Status    Status
	Timestamp time.Time
	Location  *kernel.GeoPoint
	Note      string
}

// NewHistoryEntry creates a validated ledger entry. The location is optional;
// transitions reported without a position (cancellation, backfills) pass nil.
func NewHistoryEntry(status Status, timestamp time.Time, location *kernel.GeoPoint, note string) (HistoryEntry, error) {
	entry := HistoryEntry{
		Status:    status,
		Timestamp: timestamp,
		Location:  location,
		Note:      note,
	}
	if err := entry.Validate(); err != nil {
		return HistoryEntry{}, err
	}
	return entry, nil
}

// Validate checks the entry carries a valid status, a set timestamp, and, if
// present, a properly constructed location.
func (e HistoryEntry) Validate() error {
	if err := e.Status.Validate(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		return errs.NewValueIsRequiredError("history entry timestamp")
	}
	if e.Location != nil {
		if err := e.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}
