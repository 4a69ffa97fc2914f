package sheets

import (
	"context"

	"tankhah/internal/core"
)

// Ports for the spreadsheet export adapter.
type (
	// ExpenseWriter mirrors one expense row into the export sheet.
	// Writing the same expense id twice replaces the earlier row.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseDeleter removes the row for an expense id. Deleting an id
	// that was never exported is not an error.
	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, id string) error
	}
)
