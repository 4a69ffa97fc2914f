// Package worker mirrors stored expenses into the export spreadsheet,
// driven by expense sync messages from AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tankhah/internal/amqp"
	"tankhah/internal/core"
	"tankhah/internal/sheets"
	"tankhah/internal/storage"
)

// ExpenseReader fetches the current state of an expense for export.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
}

// SyncWorker handles synchronization of expenses from SQLite to Google Sheets
type SyncWorker struct {
	store   ExpenseReader
	writer  sheets.ExpenseWriter
	deleter sheets.ExpenseDeleter
}

func NewSyncWorker(store ExpenseReader, writer sheets.ExpenseWriter, deleter sheets.ExpenseDeleter) *SyncWorker {
	return &SyncWorker{
		store:   store,
		writer:  writer,
		deleter: deleter,
	}
}

// HandleMessage processes a single expense sync message from AMQP.
// Returning an error requeues the message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionUpsert:
		return w.handleUpsert(ctx, msg.ID)
	case amqp.ActionDelete:
		return w.handleDelete(ctx, msg.ID)
	default:
		// Unknown actions are dropped, requeueing cannot fix them.
		slog.WarnContext(ctx, "Dropping message with unknown action",
			"id", msg.ID, "action", msg.Action)
		return nil
	}
}

func (w *SyncWorker) handleUpsert(ctx context.Context, id string) error {
	if w.writer == nil {
		slog.WarnContext(ctx, "No expense writer configured, skipping export", "id", id)
		return nil
	}

	expense, err := w.store.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted locally before the worker got to it; the delete
		// message will follow.
		slog.WarnContext(ctx, "Expense vanished before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("sync expense to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Expense exported",
		"id", id,
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, id string) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No expense deleter configured, skipping sheet deletion", "id", id)
		return nil
	}

	if err := w.deleter.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense from sheets: %w", err)
	}

	slog.InfoContext(ctx, "Expense removed from export sheet", "id", id)
	return nil
}
