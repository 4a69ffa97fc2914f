// Package http exposes the JSON API: expense, income, category, budget,
// check and installment management, the dashboard aggregates, the Jalali
// calendar endpoints and the license lifecycle.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tankhah/internal/core"
	"tankhah/internal/license"
	applog "tankhah/internal/log"
	"tankhah/internal/middleware/ratelimit"
	"tankhah/internal/middleware/trace"
	"tankhah/internal/services"
)

// defaultUserID identifies the single local user when the client sends no
// X-User-ID header. The schema is single-user; the header exists so a
// hosted deployment can scope licenses per user.
const defaultUserID = "local"

// Store ports into the persistence layer, one per catalog resource. The
// SQLite repository satisfies all of them.
type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
		ReorderCategories(ctx context.Context, ids []string) error
	}

	IncomeStore interface {
		ListIncomes(ctx context.Context) ([]core.Income, error)
		CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
		TotalIncomes(ctx context.Context) (core.Money, error)
	}

	BudgetStore interface {
		GetBudget(ctx context.Context, month string) (core.Budget, error)
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	CheckStore interface {
		ListChecks(ctx context.Context) ([]core.Check, error)
		GetCheck(ctx context.Context, id string) (core.Check, error)
		CreateCheck(ctx context.Context, c core.Check) (core.Check, error)
		UpdateCheck(ctx context.Context, c core.Check) (core.Check, error)
		DeleteCheck(ctx context.Context, id string) error
	}
)

type Server struct {
	http.Server

	expenses     *services.ExpenseService
	stats        *services.StatsService
	installments *services.InstallmentService
	categories   CategoryStore
	incomes      IncomeStore
	budgets      BudgetStore
	checks       CheckStore
	licenses     *license.Service

	audit        *applog.StructuredLogger
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// Deps carries everything the server wires into its routes.
type Deps struct {
	Expenses     *services.ExpenseService
	Stats        *services.StatsService
	Installments *services.InstallmentService
	Categories   CategoryStore
	Incomes      IncomeStore
	Budgets      BudgetStore
	Checks       CheckStore
	Licenses     *license.Service
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server listening on addr once Start is called.
func NewServer(addr string, deps Deps) *Server {
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		expenses:     deps.Expenses,
		stats:        deps.Stats,
		installments: deps.Installments,
		categories:   deps.Categories,
		incomes:      deps.Incomes,
		budgets:      deps.Budgets,
		checks:       deps.Checks,
		licenses:     deps.Licenses,
		audit:        applog.NewStructuredLogger(logger),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/categories/reorder", s.handleReorderCategories)

	// The Jalali month key contains a slash, so the budget month travels
	// as a query parameter rather than a path segment.
	mux.HandleFunc("GET /api/budget", s.handleGetBudget)
	mux.HandleFunc("PUT /api/budget", s.handleUpsertBudget)
	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)

	mux.HandleFunc("GET /api/checks", s.handleListChecks)
	mux.HandleFunc("POST /api/checks", s.handleCreateCheck)
	mux.HandleFunc("GET /api/checks/{id}", s.handleGetCheck)
	mux.HandleFunc("PUT /api/checks/{id}", s.handleUpdateCheck)
	mux.HandleFunc("DELETE /api/checks/{id}", s.handleDeleteCheck)

	mux.HandleFunc("GET /api/installments", s.handleListInstallments)
	mux.HandleFunc("POST /api/installments", s.handleCreateInstallment)
	mux.HandleFunc("GET /api/installments/{id}", s.handleGetInstallment)
	mux.HandleFunc("DELETE /api/installments/{id}", s.handleDeleteInstallment)
	mux.HandleFunc("POST /api/installments/payments/{id}/pay", s.handleSettlePayment)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/calendar/today", s.handleCalendarToday)
	mux.HandleFunc("GET /api/calendar/{year}/{month}", s.handleCalendarMonth)

	mux.HandleFunc("GET /api/license/status", s.handleLicenseStatus)
	mux.HandleFunc("POST /api/license/activate", s.handleLicenseActivate)

	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	tracer := trace.NewMiddleware(clientIP)
	s.tracer = tracer
	limited := s.limiter.Middleware(clientIP, nil)

	// Middleware chain, outermost first: request tracing assigns the
	// request id, the limiter rejects before any handler work, then the
	// context logger picks the trace id up for downstream handlers.
	var handler http.Handler = withSecurityHeaders(mux)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.Middleware(logger)(handler)
	handler = limited(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Shutdown stops the listener and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// userID scopes license operations. Everything else in the schema is
// single-user.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
