// Package license implements the trial/permanent license lifecycle: status
// derivation from a persisted record, the first-session trial grant and the
// key activation protocol. Persistence lives behind the RecordStore and
// KeyRegistry ports; the package itself keeps no state between calls.
package license

import "time"

const (
	TypeTrial     Type = "trial"
	TypePermanent Type = "permanent"

	StatusNone      StatusType = "none"
	StatusInactive  StatusType = "inactive"
	StatusTrial     StatusType = "trial"
	StatusPermanent StatusType = "permanent"
	StatusExpired   StatusType = "expired"
	StatusUnknown   StatusType = "unknown"

	// DaysUnlimited marks a permanent license with no expiry.
	DaysUnlimited = -1

	// DefaultTrialDays is the first-session trial window.
	DefaultTrialDays = 3
)

type (
	Type       string
	StatusType string

	// Record is the persisted license row, one per user (upsert semantics).
	// Permanent licenses may still carry an expiry ("permanent for a year");
	// permanent means "not a trial", not "never expires".
	Record struct {
		ID          string     `json:"id"`
		UserID      string     `json:"user_id"`
		LicenseKey  string     `json:"license_key,omitempty"`
		Type        Type       `json:"license_type"`
		TrialStart  *time.Time `json:"trial_start_date,omitempty"`
		TrialEnd    *time.Time `json:"trial_end_date,omitempty"`
		ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
		IsActive    bool       `json:"is_active"`
		ActivatedAt *time.Time `json:"activated_at,omitempty"`
		CreatedAt   time.Time  `json:"created_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	}

	// KeyEntry is a one-time key in the registry. TrialDays > 0 means the
	// key grants a trial of that length; zero means a permanent grant.
	KeyEntry struct {
		ID        string     `json:"id"`
		Key       string     `json:"license_key"`
		IsUsed    bool       `json:"is_used"`
		UsedBy    string     `json:"used_by,omitempty"`
		UsedAt    *time.Time `json:"used_at,omitempty"`
		TrialDays int        `json:"trial_days,omitempty"`
		CreatedAt time.Time  `json:"created_at"`
	}

	// Status is the derived, never persisted user-facing license state.
	Status struct {
		IsValid       bool       `json:"isValid"`
		Type          StatusType `json:"licenseType"`
		DaysRemaining int        `json:"daysRemaining"`
		TrialEnd      *time.Time `json:"trialEndDate,omitempty"`
	}
)

// DeriveStatus computes the license status for a record at the given
// instant. A nil record is the strict "no license" case; the synthetic
// offline trial is the Service's explicit configuration branch, never
// merged in here.
func DeriveStatus(rec *Record, now time.Time) Status {
	if rec == nil {
		return Status{IsValid: false, Type: StatusNone, DaysRemaining: 0}
	}
	if !rec.IsActive {
		return Status{IsValid: false, Type: StatusInactive, DaysRemaining: 0}
	}

	switch rec.Type {
	case TypePermanent:
		if rec.ExpiryDate == nil {
			return Status{IsValid: true, Type: StatusPermanent, DaysRemaining: DaysUnlimited}
		}
		if now.After(*rec.ExpiryDate) {
			return Status{IsValid: false, Type: StatusExpired, DaysRemaining: 0}
		}
		return Status{
			IsValid:       true,
			Type:          StatusPermanent,
			DaysRemaining: ceilDays(rec.ExpiryDate.Sub(now)),
		}
	case TypeTrial:
		if rec.TrialEnd != nil {
			if now.After(*rec.TrialEnd) {
				return Status{IsValid: false, Type: StatusExpired, DaysRemaining: 0}
			}
			return Status{
				IsValid:       true,
				Type:          StatusTrial,
				DaysRemaining: ceilDays(rec.TrialEnd.Sub(now)),
				TrialEnd:      rec.TrialEnd,
			}
		}
	}

	return Status{IsValid: false, Type: StatusUnknown, DaysRemaining: 0}
}

// ceilDays rounds the remaining duration up to whole calendar days, so a
// license expiring in ten minutes still reports one day remaining.
func ceilDays(d time.Duration) int {
	const day = 24 * time.Hour
	ms := d.Milliseconds()
	dayMs := day.Milliseconds()
	return int((ms + dayMs - 1) / dayMs)
}
