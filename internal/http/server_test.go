package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"tankhah/internal/cache"
	"tankhah/internal/core"
	"tankhah/internal/jalali"
	"tankhah/internal/license"
	"tankhah/internal/services"
	"tankhah/internal/storage"
)

type fakeExpenseStore struct {
	seq   int
	items map[string]core.Expense
	order []string
}

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{items: make(map[string]core.Expense)}
}

func (f *fakeExpenseStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	f.seq++
	e.ID = fmt.Sprintf("exp-%d", f.seq)
	e.JalaliDate = jalali.FormatShort(e.Date)
	f.items[e.ID] = e
	f.order = append(f.order, e.ID)
	return e, nil
}

func (f *fakeExpenseStore) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if _, ok := f.items[e.ID]; !ok {
		return core.Expense{}, storage.ErrNotFound
	}
	e.JalaliDate = jalali.FormatShort(e.Date)
	f.items[e.ID] = e
	return e, nil
}

func (f *fakeExpenseStore) DeleteExpense(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeExpenseStore) GetExpense(_ context.Context, id string) (core.Expense, error) {
	e, ok := f.items[id]
	if !ok {
		return core.Expense{}, storage.ErrNotFound
	}
	return e, nil
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context) ([]core.Expense, error) {
	out := make([]core.Expense, 0, len(f.items))
	for _, id := range f.order {
		if e, ok := f.items[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) TotalExpenses(_ context.Context) (core.Money, error) {
	var total core.Money
	for _, e := range f.items {
		total.Tomans += e.Amount.Tomans
	}
	return total, nil
}

type fakeCatalog struct {
	seq        int
	categories map[string]core.Category
	incomes    map[string]core.Income
	budgets    map[string]core.Budget
	checks     map[string]core.Check
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: make(map[string]core.Category),
		incomes:    make(map[string]core.Income),
		budgets:    make(map[string]core.Budget),
		checks:     make(map[string]core.Check),
	}
}

func (f *fakeCatalog) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeCatalog) ListCategories(_ context.Context) ([]core.Category, error) {
	out := make([]core.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCatalog) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c.ID = f.nextID("cat")
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if _, ok := f.categories[c.ID]; !ok {
		return core.Category{}, storage.ErrNotFound
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) DeleteCategory(_ context.Context, id string) error {
	if _, ok := f.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCatalog) ReorderCategories(_ context.Context, ids []string) error {
	for i, id := range ids {
		if c, ok := f.categories[id]; ok {
			c.Order = i
			f.categories[id] = c
		}
	}
	return nil
}

func (f *fakeCatalog) ListIncomes(_ context.Context) ([]core.Income, error) {
	out := make([]core.Income, 0, len(f.incomes))
	for _, in := range f.incomes {
		out = append(out, in)
	}
	return out, nil
}

func (f *fakeCatalog) CreateIncome(_ context.Context, in core.Income) (core.Income, error) {
	in.ID = f.nextID("inc")
	in.JalaliDate = jalali.FormatShort(in.Date)
	f.incomes[in.ID] = in
	return in, nil
}

func (f *fakeCatalog) DeleteIncome(_ context.Context, id string) error {
	if _, ok := f.incomes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.incomes, id)
	return nil
}

func (f *fakeCatalog) TotalIncomes(_ context.Context) (core.Money, error) {
	var total core.Money
	for _, in := range f.incomes {
		total.Tomans += in.Amount.Tomans
	}
	return total, nil
}

func (f *fakeCatalog) GetBudget(_ context.Context, month string) (core.Budget, error) {
	b, ok := f.budgets[month]
	if !ok {
		return core.Budget{}, storage.ErrNotFound
	}
	return b, nil
}

func (f *fakeCatalog) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if existing, ok := f.budgets[b.Month]; ok {
		b.ID = existing.ID
	} else {
		b.ID = f.nextID("bdg")
	}
	f.budgets[b.Month] = b
	return b, nil
}

func (f *fakeCatalog) ListBudgets(_ context.Context) ([]core.Budget, error) {
	out := make([]core.Budget, 0, len(f.budgets))
	for _, b := range f.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (f *fakeCatalog) ListChecks(_ context.Context) ([]core.Check, error) {
	out := make([]core.Check, 0, len(f.checks))
	for _, c := range f.checks {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCatalog) GetCheck(_ context.Context, id string) (core.Check, error) {
	c, ok := f.checks[id]
	if !ok {
		return core.Check{}, storage.ErrNotFound
	}
	return c, nil
}

func (f *fakeCatalog) CreateCheck(_ context.Context, c core.Check) (core.Check, error) {
	c.ID = f.nextID("chk")
	c.JalaliDueDate = jalali.FormatShort(c.DueDate)
	c.JalaliIssueDate = jalali.FormatShort(c.IssueDate)
	f.checks[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) UpdateCheck(_ context.Context, c core.Check) (core.Check, error) {
	if _, ok := f.checks[c.ID]; !ok {
		return core.Check{}, storage.ErrNotFound
	}
	c.JalaliDueDate = jalali.FormatShort(c.DueDate)
	c.JalaliIssueDate = jalali.FormatShort(c.IssueDate)
	f.checks[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) DeleteCheck(_ context.Context, id string) error {
	if _, ok := f.checks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.checks, id)
	return nil
}

type fakeInstallmentStore struct {
	seq          int
	installments map[string]core.Installment
	payments     map[string][]core.InstallmentPayment
}

func newFakeInstallmentStore() *fakeInstallmentStore {
	return &fakeInstallmentStore{
		installments: make(map[string]core.Installment),
		payments:     make(map[string][]core.InstallmentPayment),
	}
}

func (f *fakeInstallmentStore) CreateInstallment(_ context.Context, ins core.Installment, payments []core.InstallmentPayment) (core.Installment, error) {
	f.seq++
	ins.ID = fmt.Sprintf("ins-%d", f.seq)
	ins.JalaliStartDate = jalali.FormatShort(ins.StartDate)
	f.installments[ins.ID] = ins
	for i := range payments {
		payments[i].ID = fmt.Sprintf("pay-%d-%d", f.seq, i+1)
		payments[i].InstallmentID = ins.ID
		payments[i].JalaliDueDate = jalali.FormatShort(payments[i].DueDate)
	}
	f.payments[ins.ID] = payments
	return ins, nil
}

func (f *fakeInstallmentStore) GetInstallment(_ context.Context, id string) (core.Installment, error) {
	ins, ok := f.installments[id]
	if !ok {
		return core.Installment{}, storage.ErrNotFound
	}
	return ins, nil
}

func (f *fakeInstallmentStore) ListInstallments(_ context.Context) ([]core.Installment, error) {
	out := make([]core.Installment, 0, len(f.installments))
	for _, ins := range f.installments {
		out = append(out, ins)
	}
	return out, nil
}

func (f *fakeInstallmentStore) DeleteInstallment(_ context.Context, id string) error {
	if _, ok := f.installments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.installments, id)
	delete(f.payments, id)
	return nil
}

func (f *fakeInstallmentStore) ListPayments(_ context.Context, installmentID string) ([]core.InstallmentPayment, error) {
	return f.payments[installmentID], nil
}

func (f *fakeInstallmentStore) SettlePayment(_ context.Context, paymentID string, paidAt time.Time) error {
	for insID, payments := range f.payments {
		for i, p := range payments {
			if p.ID == paymentID && (p.Status == core.PaymentPending || p.Status == core.PaymentOverdue) {
				payments[i].Status = core.PaymentPaid
				payments[i].PaymentDate = &paidAt
				f.payments[insID] = payments
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (f *fakeInstallmentStore) MarkOverduePayments(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for insID, payments := range f.payments {
		for i, p := range payments {
			if p.Status == core.PaymentPending && p.DueDate.Before(now) {
				payments[i].Status = core.PaymentOverdue
				n++
			}
		}
		f.payments[insID] = payments
	}
	return n, nil
}

type memRecordStore struct {
	records map[string]*license.Record
}

func (m *memRecordStore) Get(_ context.Context, userID string) (*license.Record, error) {
	return m.records[userID], nil
}

func (m *memRecordStore) Upsert(_ context.Context, rec *license.Record) error {
	m.records[rec.UserID] = rec
	return nil
}

type memKeyRegistry struct {
	keys map[string]*license.KeyEntry
}

func (m *memKeyRegistry) Claim(_ context.Context, key, userID string, now time.Time) (*license.KeyEntry, error) {
	entry, ok := m.keys[key]
	if !ok || entry.IsUsed {
		return nil, nil
	}
	entry.IsUsed = true
	entry.UsedBy = userID
	entry.UsedAt = &now
	return entry, nil
}

func (m *memKeyRegistry) Insert(_ context.Context, entry *license.KeyEntry) error {
	m.keys[entry.Key] = entry
	return nil
}

type testEnv struct {
	server       *Server
	expenseStore *fakeExpenseStore
	catalog      *fakeCatalog
	keys         *memKeyRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	expenseStore := newFakeExpenseStore()
	catalog := newFakeCatalog()
	installmentStore := newFakeInstallmentStore()
	records := &memRecordStore{records: make(map[string]*license.Record)}
	keys := &memKeyRegistry{keys: make(map[string]*license.KeyEntry)}

	statsCache := cache.NewLRUCache[core.DashboardStats](8, time.Minute)
	srv := NewServer(":0", Deps{
		Expenses:     services.NewExpenseService(expenseStore, nil, statsCache),
		Stats:        services.NewStatsService(expenseStore, statsCache),
		Installments: services.NewInstallmentService(installmentStore),
		Categories:   catalog,
		Incomes:      catalog,
		Budgets:      catalog,
		Checks:       catalog,
		Licenses: license.NewService(records, keys, license.Config{
			BackendConfigured: true,
			AdminEmails:       []string{"admin@example.com"},
			MasterKeys:        []string{"MASTER-KEY-0000"},
			TrialDays:         3,
		}),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{server: srv, expenseStore: expenseStore, catalog: catalog, keys: keys}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.server.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Fatalf("readyz: got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/expenses", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/expenses",
		`{"title":"نان سنگک","amount":"۱۵۰,۰۰۰","categoryId":"cat-food","date":"1405/06/06"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d %q", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Expense](t, rec)
	if created.Amount.Tomans != 150000 {
		t.Fatalf("amount = %d, want 150000", created.Amount.Tomans)
	}
	if created.JalaliDate != "1405/06/06" {
		t.Fatalf("jalaliDate = %q, want 1405/06/06", created.JalaliDate)
	}

	rec = env.do(t, http.MethodGet, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/expenses/"+created.ID,
		`{"title":"نان بربری","amount":"120000","categoryId":"cat-food","date":"1405/06/06"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d %q", rec.Code, rec.Body.String())
	}
	updated := decodeBody[core.Expense](t, rec)
	if updated.Title != "نان بربری" || updated.Amount.Tomans != 120000 {
		t.Fatalf("updated = %+v", updated)
	}

	rec = env.do(t, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d", rec.Code)
	}
}

func TestCreateExpense_BadInput(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"bad amount", `{"title":"x","amount":"abc","categoryId":"c","date":"1405/06/06"}`},
		{"zero amount", `{"title":"x","amount":"0","categoryId":"c","date":"1405/06/06"}`},
		{"bad date", `{"title":"x","amount":"1000","categoryId":"c","date":"1405/13/01"}`},
		{"day out of range", `{"title":"x","amount":"1000","categoryId":"c","date":"1405/07/31"}`},
		{"empty title", `{"title":"","amount":"1000","categoryId":"c","date":"1405/06/06"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/expenses", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got %d %q, want 400", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListExpenses_CategoryFilter(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/expenses",
		`{"title":"نان","amount":"50000","categoryId":"cat-food","date":"1405/06/06"}`)
	env.do(t, http.MethodPost, "/api/expenses",
		`{"title":"تاکسی","amount":"30000","categoryId":"cat-transport","date":"1405/06/06"}`)

	rec := env.do(t, http.MethodGet, "/api/expenses?category=cat-food", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	got := decodeBody[[]core.Expense](t, rec)
	if len(got) != 1 || got[0].CategoryID != "cat-food" {
		t.Fatalf("filtered list = %+v", got)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/budget?month=1405/06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get empty: got %d", rec.Code)
	}
	empty := decodeBody[core.Budget](t, rec)
	if empty.Month != "1405/06" || empty.MonthlyTarget.Tomans != 0 {
		t.Fatalf("empty budget = %+v", empty)
	}

	rec = env.do(t, http.MethodPut, "/api/budget",
		`{"month":"1405/06","monthlyTarget":"۵,۰۰۰,۰۰۰","currentBalance":"250000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: got %d %q", rec.Code, rec.Body.String())
	}
	saved := decodeBody[core.Budget](t, rec)
	if saved.MonthlyTarget.Tomans != 5000000 || saved.CurrentBalance.Tomans != 250000 {
		t.Fatalf("saved budget = %+v", saved)
	}

	rec = env.do(t, http.MethodGet, "/api/budget?month=1405/06", "")
	again := decodeBody[core.Budget](t, rec)
	if again.ID != saved.ID || again.MonthlyTarget.Tomans != 5000000 {
		t.Fatalf("reloaded budget = %+v", again)
	}
}

func TestBudget_SnapshotsBalanceWhenOmitted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/incomes",
		`{"title":"حقوق","amount":"400000","date":"1405/06/01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: got %d %q", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/expenses",
		`{"title":"خرید","amount":"150000","categoryId":"cat-food","date":"1405/06/02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, "/api/budget",
		`{"month":"1405/06","monthlyTarget":"1000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: got %d %q", rec.Code, rec.Body.String())
	}
	saved := decodeBody[core.Budget](t, rec)
	if saved.CurrentBalance.Tomans != 250000 {
		t.Fatalf("CurrentBalance = %d, want 250000", saved.CurrentBalance.Tomans)
	}
}

func TestListBudgets(t *testing.T) {
	env := newTestEnv(t)

	for _, month := range []string{"1405/05", "1405/06"} {
		rec := env.do(t, http.MethodPut, "/api/budget",
			`{"month":"`+month+`","monthlyTarget":"1000000","currentBalance":"500000"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("upsert %s: got %d %q", month, rec.Code, rec.Body.String())
		}
	}

	rec := env.do(t, http.MethodGet, "/api/budgets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	list := decodeBody[[]core.Budget](t, rec)
	if len(list) != 2 {
		t.Fatalf("list = %d items, want 2", len(list))
	}
	if list[0].Month != "1405/06" || list[1].Month != "1405/05" {
		t.Fatalf("order = %s, %s, want newest first", list[0].Month, list[1].Month)
	}
}

func TestBudget_InvalidMonth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/budget?month=1405-06", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestCheckLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checks",
		`{"type":"issued","checkNumber":"123456","amount":"2000000","issuer":"علی","receiver":"فروشگاه","bank":"ملت","dueDate":"1405/08/01","issueDate":"1405/06/06"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d %q", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Check](t, rec)
	if created.Status != core.CheckPending {
		t.Fatalf("status = %q, want pending", created.Status)
	}
	if created.JalaliDueDate != "1405/08/01" {
		t.Fatalf("jalaliDueDate = %q", created.JalaliDueDate)
	}

	rec = env.do(t, http.MethodGet, "/api/checks?type=issued", "")
	list := decodeBody[[]core.Check](t, rec)
	if len(list) != 1 {
		t.Fatalf("list issued = %d items", len(list))
	}

	rec = env.do(t, http.MethodGet, "/api/checks?type=received", "")
	list = decodeBody[[]core.Check](t, rec)
	if len(list) != 0 {
		t.Fatalf("list received = %d items, want 0", len(list))
	}

	rec = env.do(t, http.MethodDelete, "/api/checks/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}
}

func TestInstallmentCreateAndSchedule(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/installments",
		`{"type":"payable","title":"وام خرید","principalAmount":"10000000","interestRate":20,"durationMonths":6,"startDate":"1405/06/06","creditor":"بانک ملت"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d %q", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Installment](t, rec)
	if created.InterestAmount.Tomans != 1000000 {
		t.Fatalf("interest = %d, want 1000000", created.InterestAmount.Tomans)
	}
	if created.TotalAmount.Tomans != 11000000 {
		t.Fatalf("total = %d, want 11000000", created.TotalAmount.Tomans)
	}
	if created.JalaliStartDate != "1405/06/06" {
		t.Fatalf("start date = %q, want 1405/06/06", created.JalaliStartDate)
	}

	rec = env.do(t, http.MethodGet, "/api/installments/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}
	got := decodeBody[installmentResponse](t, rec)
	if len(got.Payments) != 6 {
		t.Fatalf("payments = %d, want 6", len(got.Payments))
	}
	if got.Payments[0].JalaliDueDate != "1405/07/06" {
		t.Fatalf("first due date = %q, want 1405/07/06", got.Payments[0].JalaliDueDate)
	}

	payID := got.Payments[0].ID
	rec = env.do(t, http.MethodPost, "/api/installments/payments/"+payID+"/pay", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("settle: got %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/installments/payments/"+payID+"/pay", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("settle twice: got %d, want 404", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	// Pin to the UTC date: the stats service buckets days in UTC.
	today := jalali.FormatShort(time.Now().UTC())
	env.do(t, http.MethodPost, "/api/expenses",
		fmt.Sprintf(`{"title":"خرید","amount":"100000","categoryId":"cat-food","date":"%s"}`, today))

	rec := env.do(t, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: got %d %q", rec.Code, rec.Body.String())
	}
	stats := decodeBody[core.DashboardStats](t, rec)
	if stats.TotalExpenses.Tomans != 100000 {
		t.Fatalf("total = %d, want 100000", stats.TotalExpenses.Tomans)
	}
	if stats.TodayExpenses.Tomans != 100000 {
		t.Fatalf("today = %d, want 100000", stats.TodayExpenses.Tomans)
	}
}

func TestCalendarMonth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/1405/6", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar: got %d %q", rec.Code, rec.Body.String())
	}
	got := decodeBody[calendarMonthResponse](t, rec)
	if got.MonthName != "شهریور" {
		t.Fatalf("monthName = %q", got.MonthName)
	}
	if got.Days != 31 {
		t.Fatalf("days = %d, want 31", got.Days)
	}
	// 1 Shahrivar 1405 is a Sunday, one leading blank in the
	// Saturday-first grid.
	if got.Weeks[0][0] != 0 || got.Weeks[0][1] != 1 {
		t.Fatalf("first week = %v", got.Weeks[0])
	}

	rec = env.do(t, http.MethodGet, "/api/calendar/1405/13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("month 13: got %d, want 400", rec.Code)
	}
}

func TestCalendarToday(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/calendar/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("today: got %d", rec.Code)
	}
	got := decodeBody[calendarTodayResponse](t, rec)
	want := jalali.ToJalali(time.Now())
	if got.Year != want.Year || got.Month != want.Month || got.Day != want.Day {
		t.Fatalf("today = %+v, want %+v", got, want)
	}
	if !strings.HasPrefix(got.Formatted, fmt.Sprintf("%d/", want.Year)) {
		t.Fatalf("formatted = %q", got.Formatted)
	}
}

func TestLicenseStatus_GrantsTrial(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/license/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	status := decodeBody[license.Status](t, rec)
	if !status.IsValid || status.Type != license.StatusTrial {
		t.Fatalf("status = %+v, want valid trial", status)
	}
	if status.DaysRemaining != 3 {
		t.Fatalf("daysRemaining = %d, want 3", status.DaysRemaining)
	}
}

func TestLicenseActivate(t *testing.T) {
	env := newTestEnv(t)
	env.keys.keys["PERM-AAAA-BBBB-CCCC-DDDD"] = &license.KeyEntry{
		ID:  "key-1",
		Key: "PERM-AAAA-BBBB-CCCC-DDDD",
	}

	rec := env.do(t, http.MethodPost, "/api/license/activate",
		`{"licenseKey":"perm-aaaa-bbbb-cccc-dddd","email":"someone@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: got %d %q", rec.Code, rec.Body.String())
	}
	result := decodeBody[license.Result](t, rec)
	if !result.Success {
		t.Fatalf("activation failed: %q", result.Message)
	}

	// The key is consumed, a second activation must fail.
	rec = env.do(t, http.MethodPost, "/api/license/activate",
		`{"licenseKey":"PERM-AAAA-BBBB-CCCC-DDDD","email":"other@example.com"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("reuse: got %d, want 422", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/license/status", "")
	status := decodeBody[license.Status](t, rec)
	if status.Type != license.StatusPermanent {
		t.Fatalf("status after activation = %+v, want permanent", status)
	}
}

func TestLicenseActivate_MasterKeyNeedsAdminEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/license/activate",
		`{"licenseKey":"MASTER-KEY-0000","email":"someone@example.com"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("non-admin master key: got %d, want 422", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/license/activate",
		`{"licenseKey":"MASTER-KEY-0000","email":"admin@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin master key: got %d %q", rec.Code, rec.Body.String())
	}
	result := decodeBody[license.Result](t, rec)
	if !result.Success {
		t.Fatalf("admin activation failed: %q", result.Message)
	}
}

func TestLicenseActivate_EmptyKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/license/activate", `{"licenseKey":"","email":"x@y.z"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestIncomeLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/incomes",
		`{"title":"حقوق","amount":"۲۵,۰۰۰,۰۰۰","date":"1405/06/01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d %q", rec.Code, rec.Body.String())
	}
	created := decodeBody[core.Income](t, rec)
	if created.Amount.Tomans != 25000000 {
		t.Fatalf("amount = %d, want 25000000", created.Amount.Tomans)
	}

	rec = env.do(t, http.MethodGet, "/api/incomes", "")
	list := decodeBody[[]core.Income](t, rec)
	if len(list) != 1 {
		t.Fatalf("list = %d items, want 1", len(list))
	}

	rec = env.do(t, http.MethodDelete, "/api/incomes/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/incomes/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing: got %d, want 404", rec.Code)
	}
}

func TestCategoryReorder(t *testing.T) {
	env := newTestEnv(t)

	a := decodeBody[core.Category](t, env.do(t, http.MethodPost, "/api/categories",
		`{"name":"خوراک","icon":"food","color":"#f00"}`))
	b := decodeBody[core.Category](t, env.do(t, http.MethodPost, "/api/categories",
		`{"name":"حمل و نقل","icon":"bus","color":"#0f0"}`))

	rec := env.do(t, http.MethodPost, "/api/categories/reorder",
		fmt.Sprintf(`{"ids":["%s","%s"]}`, b.ID, a.ID))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reorder: got %d %q", rec.Code, rec.Body.String())
	}
	if got := env.catalog.categories[b.ID].Order; got != 0 {
		t.Fatalf("order of %s = %d, want 0", b.ID, got)
	}
	if got := env.catalog.categories[a.ID].Order; got != 1 {
		t.Fatalf("order of %s = %d, want 1", a.ID, got)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/healthz", "")
	rec := env.do(t, http.MethodGet, "/api/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", rec.Code)
	}
	got := decodeBody[metricsResponse](t, rec)
	// The metrics call itself is counted too.
	if got.TotalRequests < 2 {
		t.Fatalf("totalRequests = %d, want at least 2", got.TotalRequests)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}
