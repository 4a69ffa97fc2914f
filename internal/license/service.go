package license

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Ports to the persistence collaborator. "No record" is nil with a nil
// error; an error always means the lookup itself failed.
type (
	RecordStore interface {
		// Get returns the user's license record, or nil when none exists.
		Get(ctx context.Context, userID string) (*Record, error)
		// Upsert writes the record keyed by user id, replacing any prior one.
		Upsert(ctx context.Context, rec *Record) error
	}

	KeyRegistry interface {
		// Claim atomically consumes an unused key, stamping the consumer
		// and timestamp, and returns the claimed entry. It returns nil with
		// a nil error when the key does not exist or is already used.
		Claim(ctx context.Context, key, userID string, now time.Time) (*KeyEntry, error)
		// Insert registers a freshly minted key (admin key generation).
		Insert(ctx context.Context, entry *KeyEntry) error
	}
)

// Result is the user-facing outcome of an activation attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Config carries the deployment knobs of the license service.
type Config struct {
	// BackendConfigured gates the degrade-gracefully path: when false the
	// service never touches the stores and hands out a synthetic trial.
	BackendConfigured bool
	AdminEmails       []string
	MasterKeys        []string
	TrialDays         int
}

// Service executes the license lifecycle over the store ports. Each call is
// a fresh computation; nothing is cached between invocations.
type Service struct {
	records RecordStore
	keys    KeyRegistry
	cfg     Config
	now     func() time.Time
}

func NewService(records RecordStore, keys KeyRegistry, cfg Config) *Service {
	if cfg.TrialDays <= 0 {
		cfg.TrialDays = DefaultTrialDays
	}
	if len(cfg.MasterKeys) == 0 {
		cfg.MasterKeys = DefaultMasterKeys
	}
	if len(cfg.AdminEmails) == 0 {
		cfg.AdminEmails = DefaultAdminEmails
	}

	// Submitted keys and emails are normalized before matching, so the
	// operator-supplied lists must be normalized the same way.
	masterKeys := make([]string, len(cfg.MasterKeys))
	for i, k := range cfg.MasterKeys {
		masterKeys[i] = NormalizeKey(k)
	}
	cfg.MasterKeys = masterKeys
	adminEmails := make([]string, len(cfg.AdminEmails))
	for i, e := range cfg.AdminEmails {
		adminEmails[i] = NormalizeEmail(e)
	}
	cfg.AdminEmails = adminEmails

	return &Service{
		records: records,
		keys:    keys,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Check returns the current license status for a user. A missing record is
// resolved by granting the implicit first-session trial. Backend
// configuration and fetch problems degrade to a synthetic trial so the
// application stays usable; they are logged, never surfaced.
func (s *Service) Check(ctx context.Context, userID string) Status {
	if !s.cfg.BackendConfigured {
		return s.syntheticTrial()
	}

	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "License fetch failed, falling back to synthetic trial",
			"user_id", userID, "error", err)
		return s.syntheticTrial()
	}

	if rec == nil {
		rec, err = s.EnsureTrial(ctx, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Trial creation failed, falling back to synthetic trial",
				"user_id", userID, "error", err)
			return s.syntheticTrial()
		}
	}

	return DeriveStatus(rec, s.now())
}

// EnsureTrial creates the implicit first-session trial record if the user
// has none, and returns the user's record either way.
func (s *Service) EnsureTrial(ctx context.Context, userID string) (*Record, error) {
	rec, err := s.records.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	if rec != nil {
		return rec, nil
	}

	now := s.now()
	end := now.Add(time.Duration(s.cfg.TrialDays) * 24 * time.Hour)
	rec = &Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       TypeTrial,
		TrialStart: &now,
		TrialEnd:   &end,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create trial license: %w", err)
	}

	slog.InfoContext(ctx, "Trial license created",
		"user_id", userID, "trial_days", s.cfg.TrialDays)
	return rec, nil
}

// Activate runs the key redemption protocol: master admin keys upsert a
// permanent record directly (admin emails only); other keys are claimed
// atomically from the registry and grant a trial or permanent license
// depending on the entry's trial-days value.
func (s *Service) Activate(ctx context.Context, userID, userEmail, licenseKey string) Result {
	if !s.cfg.BackendConfigured {
		return Result{Success: false, Message: "اتصال به سرور برقرار نیست."}
	}

	key := NormalizeKey(licenseKey)
	email := NormalizeEmail(userEmail)
	now := s.now()

	if contains(s.cfg.MasterKeys, key) {
		if !contains(s.cfg.AdminEmails, email) {
			return Result{Success: false, Message: "این کد لایسنس مخصوص ادمین است."}
		}
		rec := &Record{
			ID:          uuid.NewString(),
			UserID:      userID,
			LicenseKey:  key,
			Type:        TypePermanent,
			IsActive:    true,
			ActivatedAt: &now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.records.Upsert(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Admin license activation failed",
				"user_id", userID, "error", err)
			return Result{Success: false, Message: "خطا در فعال‌سازی لایسنس ادمین"}
		}
		return Result{Success: true, Message: "لایسنس دائمی ادمین با موفقیت فعال شد!"}
	}

	entry, err := s.keys.Claim(ctx, key, userID, now)
	if err != nil {
		slog.ErrorContext(ctx, "Key claim failed",
			"user_id", userID, "error", err)
		return Result{Success: false, Message: "خطا در مصرف کد لایسنس"}
	}
	if entry == nil {
		return Result{Success: false, Message: "کد لایسنس نامعتبر است یا قبلاً استفاده شده است"}
	}

	rec := &Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		LicenseKey:  key,
		Type:        TypePermanent,
		IsActive:    true,
		ActivatedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if entry.TrialDays > 0 {
		end := now.AddDate(0, 0, entry.TrialDays)
		rec.Type = TypeTrial
		rec.TrialStart = &now
		rec.TrialEnd = &end
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		// The key is already consumed at this point; there is no rollback.
		slog.ErrorContext(ctx, "License upsert failed after key claim",
			"user_id", userID, "key", key, "error", err)
		return Result{Success: false, Message: "خطا در به‌روزرسانی لایسنس کاربر"}
	}

	if entry.TrialDays > 0 {
		return Result{
			Success: true,
			Message: fmt.Sprintf("لایسنس آزمایشی %d روزه با موفقیت فعال شد!", entry.TrialDays),
		}
	}
	return Result{Success: true, Message: "لایسنس دائمی با موفقیت فعال شد!"}
}

func (s *Service) syntheticTrial() Status {
	return Status{
		IsValid:       true,
		Type:          StatusTrial,
		DaysRemaining: s.cfg.TrialDays,
	}
}
