package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CheckReceived CheckType = "received"
	CheckIssued   CheckType = "issued"

	CheckPending   CheckStatus = "pending"
	CheckCashed    CheckStatus = "cashed"
	CheckBounced   CheckStatus = "bounced"
	CheckCancelled CheckStatus = "cancelled"

	InstallmentReceivable InstallmentType = "receivable"
	InstallmentPayable    InstallmentType = "payable"

	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

type (
	CheckType       string
	CheckStatus     string
	InstallmentType string
	PaymentStatus   string

	// Category is one of the user's expense categories. The eight default
	// categories are seeded once at schema-migration time.
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
		Order int    `json:"order"`
	}

	Expense struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Amount      Money     `json:"amount"`
		CategoryID  string    `json:"categoryId"`
		Date        time.Time `json:"date"`
		JalaliDate  string    `json:"jalaliDate"` // denormalized display string, recomputed on every write
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	Income struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		JalaliDate  string    `json:"jalaliDate"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Budget holds the target and balance snapshot for one Jalali month.
	// Month is the "YYYY/MM" Jalali month key.
	Budget struct {
		ID             string `json:"id"`
		MonthlyTarget  Money  `json:"monthlyTarget"`
		CurrentBalance Money  `json:"currentBalance"`
		Month          string `json:"month"`
	}

	Check struct {
		ID              string      `json:"id"`
		Type            CheckType   `json:"type"`
		CheckNumber     string      `json:"checkNumber"`
		Amount          Money       `json:"amount"`
		Issuer          string      `json:"issuer"`
		Receiver        string      `json:"receiver"`
		Bank            string      `json:"bank"`
		AccountNumber   string      `json:"accountNumber,omitempty"`
		DueDate         time.Time   `json:"dueDate"`
		JalaliDueDate   string      `json:"jalaliDueDate"`
		IssueDate       time.Time   `json:"issueDate"`
		JalaliIssueDate string      `json:"jalaliIssueDate"`
		Status          CheckStatus `json:"status"`
		Description     string      `json:"description,omitempty"`
		CreatedAt       time.Time   `json:"createdAt"`
		UpdatedAt       time.Time   `json:"updatedAt"`
	}

	Installment struct {
		ID                string          `json:"id"`
		Type              InstallmentType `json:"type"`
		Title             string          `json:"title"`
		PrincipalAmount   Money           `json:"principalAmount"`
		InterestRate      float64         `json:"interestRate"` // percent
		InterestAmount    Money           `json:"interestAmount"`
		TotalAmount       Money           `json:"totalAmount"`
		PaidAmount        Money           `json:"paidAmount"`
		RemainingAmount   Money           `json:"remainingAmount"`
		InstallmentCount  int             `json:"installmentCount"`
		PaidCount         int             `json:"paidCount"`
		InstallmentAmount Money           `json:"installmentAmount"`
		DurationMonths    int             `json:"durationMonths"`
		StartDate         time.Time       `json:"startDate"`
		JalaliStartDate   string          `json:"jalaliStartDate"`
		Description       string          `json:"description,omitempty"`
		Creditor          string          `json:"creditor,omitempty"`
		Debtor            string          `json:"debtor,omitempty"`
		CreatedAt         time.Time       `json:"createdAt"`
		UpdatedAt         time.Time       `json:"updatedAt"`
	}

	InstallmentPayment struct {
		ID                string        `json:"id"`
		InstallmentID     string        `json:"installmentId"`
		Amount            Money         `json:"amount"`
		DueDate           time.Time     `json:"dueDate"`
		JalaliDueDate     string        `json:"jalaliDueDate"`
		PaymentDate       *time.Time    `json:"paymentDate,omitempty"`
		JalaliPaymentDate string        `json:"jalaliPaymentDate,omitempty"`
		Status            PaymentStatus `json:"status"`
		InstallmentNumber int           `json:"installmentNumber"`
		Description       string        `json:"description,omitempty"`
		CreatedAt         time.Time     `json:"createdAt"`
	}

	// ExpenseFilter narrows expense listings. Zero values mean "no constraint".
	ExpenseFilter struct {
		StartDate   time.Time
		EndDate     time.Time
		CategoryIDs []string
		SearchQuery string
	}

	CheckFilter struct {
		Type        CheckType
		Status      CheckStatus
		SearchQuery string
	}
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("invalid duration")
)

func (t CheckType) IsValid() bool {
	return t == CheckReceived || t == CheckIssued
}

func (s CheckStatus) IsValid() bool {
	switch s {
	case CheckPending, CheckCashed, CheckBounced, CheckCancelled:
		return true
	}
	return false
}

func (t InstallmentType) IsValid() bool {
	return t == InstallmentReceivable || t == InstallmentPayable
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Check) Validate() error {
	if !c.Type.IsValid() {
		return ErrInvalidType
	}
	if !c.Status.IsValid() {
		return ErrInvalidStatus
	}
	if strings.TrimSpace(c.CheckNumber) == "" {
		return errors.New("empty check number")
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	if c.DueDate.IsZero() || c.IssueDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (i Installment) Validate() error {
	if !i.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}
	if err := i.PrincipalAmount.Validate(); err != nil {
		return err
	}
	if i.InstallmentCount < 1 {
		return errors.New("installment count must be at least 1")
	}
	if i.DurationMonths < 1 {
		return ErrInvalidDuration
	}
	if i.StartDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Matches reports whether the check satisfies every set filter field.
func (f CheckFilter) Matches(c Check) bool {
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(c.CheckNumber), q) &&
			!strings.Contains(strings.ToLower(c.Issuer), q) &&
			!strings.Contains(strings.ToLower(c.Receiver), q) &&
			!strings.Contains(strings.ToLower(c.Bank), q) {
			return false
		}
	}
	return true
}

// Matches reports whether the expense satisfies every set filter field.
func (f ExpenseFilter) Matches(e Expense) bool {
	if !f.StartDate.IsZero() && e.Date.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && e.Date.After(f.EndDate) {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if id == e.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) {
			return false
		}
	}
	return true
}
