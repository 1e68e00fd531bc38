// Package backfill repairs documents written under older schema versions:
// categories without a group, transactions without denormalized names, and
// payees without a budget. Affected collections are backed up first and
// restored on failure.
package backfill

import (
	"context"
	"fmt"
	"log"

	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/docstore"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

// legacyCategory carries the budget_id field that pre-group category
// documents were written with. Current documents no longer have it.
type legacyCategory struct {
	models.Category
	BudgetID string `json:"budget_id"`
}

// backupDoc is one snapshotted document, keyed by run so several backfills
// can keep separate backups.
type backupDoc struct {
	RunID      string         `json:"run_id"`
	Collection string         `json:"collection"`
	DocID      string         `json:"doc_id"`
	Doc        map[string]any `json:"doc"`
}

// Result reports what one run touched.
type Result struct {
	RunID      string         `json:"run_id"`
	DryRun     bool           `json:"dry_run"`
	Changed    map[string]int `json:"changed"`
	BackedUp   map[string]int `json:"backed_up"`
	RolledBack bool           `json:"rolled_back"`
}

type Runner struct {
	store *db.Store

	legacyCategs docstore.Collection[legacyCategory]
	backups      docstore.Collection[backupDoc]
}

func NewRunner(store *db.Store) *Runner {
	return &Runner{
		store:        store,
		legacyCategs: docstore.NewCollection[legacyCategory](store.Docs, db.ColCategs),
		backups:      docstore.NewCollection[backupDoc](store.Docs, db.ColBackups),
	}
}

// Run executes the three backfill steps. On any step failure it restores the
// backed-up collections; a rollback failure is logged, never re-raised, so
// the original error always reaches the caller.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Result, error) {
	result := &Result{
		RunID:    docstore.NewID(),
		DryRun:   dryRun,
		Changed:  map[string]int{},
		BackedUp: map[string]int{},
	}
	log.Printf("INFO: Backfill run %s starting (dry_run=%v)", result.RunID, dryRun)

	if !dryRun {
		for _, col := range []string{db.ColCategs, db.ColTxns, db.ColPayees} {
			n, err := r.backupCollection(ctx, result.RunID, col)
			if err != nil {
				return nil, err
			}
			result.BackedUp[col] = n
		}
	}

	steps := []struct {
		name string
		fn   func(context.Context, bool) (int, error)
	}{
		{"categories", r.backfillCategories},
		{"transactions", r.backfillTransactions},
		{"payees", r.backfillPayees},
	}
	for _, step := range steps {
		n, err := step.fn(ctx, dryRun)
		if err != nil {
			log.Printf("ERROR: Backfill step %s failed: %v", step.name, err)
			if !dryRun {
				if rbErr := r.rollback(ctx, result.RunID); rbErr != nil {
					log.Printf("ERROR: Backfill rollback failed for run %s: %v", result.RunID, rbErr)
				} else {
					result.RolledBack = true
				}
			}
			return result, err
		}
		result.Changed[step.name] = n
	}

	log.Printf("INFO: Backfill run %s completed - categories: %d, transactions: %d, payees: %d",
		result.RunID, result.Changed["categories"], result.Changed["transactions"], result.Changed["payees"])
	return result, nil
}

func (r *Runner) backupCollection(ctx context.Context, runID, collection string) (int, error) {
	raw := docstore.NewCollection[map[string]any](r.store.Docs, collection)
	docs, err := raw.Query(ctx)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if id == "" {
			continue
		}
		backup := backupDoc{
			RunID:      runID,
			Collection: collection,
			DocID:      id,
			Doc:        doc,
		}
		key := fmt.Sprintf("%s:%s:%s", runID, collection, id)
		if err := r.backups.Set(ctx, key, backup); err != nil {
			return 0, err
		}
	}
	log.Printf("INFO: Backed up collection %s - %d documents", collection, len(docs))
	return len(docs), nil
}

func (r *Runner) rollback(ctx context.Context, runID string) error {
	backups, err := r.backups.Query(ctx, docstore.Eq("run_id", runID))
	if err != nil {
		return err
	}
	for _, b := range backups {
		raw := docstore.NewCollection[map[string]any](r.store.Docs, b.Collection)
		if err := raw.Set(ctx, b.DocID, b.Doc); err != nil {
			return err
		}
	}
	log.Printf("INFO: Rollback restored %d documents for run %s", len(backups), runID)
	return nil
}

// backfillCategories attaches orphan categories (no group_id) to the first
// group of the budget recorded in the legacy budget_id field.
func (r *Runner) backfillCategories(ctx context.Context, dryRun bool) (int, error) {
	categories, err := r.legacyCategs.Query(ctx)
	if err != nil {
		return 0, err
	}

	groupsByBudget := map[string][]models.CategoryGroup{}
	changed := 0
	for _, cat := range categories {
		if cat.GroupID != "" {
			continue
		}
		if cat.BudgetID == "" {
			log.Printf("ERROR: Orphan category %s has no budget to resolve a group from", cat.ID)
			continue
		}
		groups, ok := groupsByBudget[cat.BudgetID]
		if !ok {
			groups, err = r.store.GroupsForBudget(ctx, cat.BudgetID)
			if err != nil {
				return changed, err
			}
			groupsByBudget[cat.BudgetID] = groups
		}
		if len(groups) == 0 {
			log.Printf("ERROR: No group found for category %s in budget %s", cat.ID, cat.BudgetID)
			continue
		}

		cat.Category.GroupID = groups[0].ID
		if !dryRun {
			if err := r.store.Categs.Update(ctx, cat.ID, cat.Category); err != nil {
				return changed, err
			}
		}
		changed++
	}
	return changed, nil
}

// backfillTransactions fills the denormalized account_name and category_name
// fields from the referenced documents.
func (r *Runner) backfillTransactions(ctx context.Context, dryRun bool) (int, error) {
	txns, err := r.store.Txns.Query(ctx)
	if err != nil {
		return 0, err
	}

	accountNames := map[string]string{}
	categoryNames := map[string]string{}
	changed := 0
	for _, txn := range txns {
		if txn.AccountName != "" && (txn.CategoryID == nil || txn.CategoryName != nil) {
			continue
		}

		if txn.AccountName == "" {
			name, ok := accountNames[txn.AccountID]
			if !ok {
				account, err := r.store.Accounts.Get(ctx, txn.AccountID)
				if err != nil {
					name = "Unknown Account"
				} else {
					name = account.Name
				}
				accountNames[txn.AccountID] = name
			}
			txn.AccountName = name
		}
		if txn.CategoryID != nil && txn.CategoryName == nil {
			name, ok := categoryNames[*txn.CategoryID]
			if !ok {
				category, err := r.store.Categs.Get(ctx, *txn.CategoryID)
				if err == nil {
					name = category.Name
				}
				categoryNames[*txn.CategoryID] = name
			}
			if name != "" {
				txn.CategoryName = &name
			}
		}

		if !dryRun {
			if err := r.store.Txns.Update(ctx, txn.ID, txn); err != nil {
				return changed, err
			}
		}
		changed++
	}
	return changed, nil
}

// backfillPayees fills a payee's budget_id from the most recent transaction
// naming it, via the transaction's account.
func (r *Runner) backfillPayees(ctx context.Context, dryRun bool) (int, error) {
	payees, err := r.store.Payees.Query(ctx)
	if err != nil {
		return 0, err
	}

	var missing []models.Payee
	for _, p := range payees {
		if p.BudgetID == "" {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	txns, err := r.store.Txns.Query(ctx)
	if err != nil {
		return 0, err
	}
	budgetByPayeeName := map[string]string{}
	accountBudgets := map[string]string{}
	for _, txn := range txns {
		if txn.Payee == nil || *txn.Payee == "" {
			continue
		}
		budgetID, ok := accountBudgets[txn.AccountID]
		if !ok {
			account, err := r.store.Accounts.Get(ctx, txn.AccountID)
			if err != nil {
				continue
			}
			budgetID = account.BudgetID
			accountBudgets[txn.AccountID] = budgetID
		}
		budgetByPayeeName[*txn.Payee] = budgetID
	}

	changed := 0
	for _, p := range missing {
		budgetID, ok := budgetByPayeeName[p.Name]
		if !ok {
			log.Printf("ERROR: Could not determine budget for payee %s", p.ID)
			continue
		}
		p.BudgetID = budgetID
		if !dryRun {
			if err := r.store.Payees.Update(ctx, p.ID, p); err != nil {
				return changed, err
			}
		}
		changed++
	}
	return changed, nil
}
