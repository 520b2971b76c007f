package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partyvault/partyvault/internal/domain"
	"github.com/partyvault/partyvault/internal/infrastructure/metrics"
)

// SplitUseCase divides a vault's accumulated holdings across the party. The
// whole operation (aggregate, archive, reissue) runs inside one transaction
// with the vault row locked, so concurrent splits against the same vault
// serialize instead of double-spending the same ledger entries.
type SplitUseCase struct {
	txManager      TransactionManager
	vaultRepo      VaultRepository
	currencyRepo   CurrencyRepository
	holdingRepo    HoldingRepository
	permissionRepo PermissionRepository
	activityRepo   ActivityRepository
	idGen          IDGenerator
	retrier        Retrier
	cache          Cache
	metrics        *metrics.Metrics
}

// NewSplitUseCase creates a new SplitUseCase.
func NewSplitUseCase(
	txManager TransactionManager,
	vaultRepo VaultRepository,
	currencyRepo CurrencyRepository,
	holdingRepo HoldingRepository,
	permissionRepo PermissionRepository,
	activityRepo ActivityRepository,
	idGen IDGenerator,
	retrier Retrier,
	cache Cache,
	m *metrics.Metrics,
) *SplitUseCase {
	return &SplitUseCase{
		txManager:      txManager,
		vaultRepo:      vaultRepo,
		currencyRepo:   currencyRepo,
		holdingRepo:    holdingRepo,
		permissionRepo: permissionRepo,
		activityRepo:   activityRepo,
		idGen:          idGen,
		retrier:        retrier,
		cache:          cache,
		metrics:        m,
	}
}

// SplitInput represents one split request.
type SplitInput struct {
	VaultID          string
	ActorID          string
	PartyMemberCount int
	KeepPartyShare   bool
	Mode             domain.SplitMode
}

// SplitCurrencyResult is the per-currency outcome reported to the caller.
type SplitCurrencyResult struct {
	CurrencyID    string
	Total         decimal.Decimal
	Shares        int
	ShareAmount   decimal.Decimal
	Remainder     decimal.Decimal
	ArchivedCount int
	CreatedCount  int
}

// SplitOutput is returned to the caller so the UI can reconcile that no
// value silently vanished.
type SplitOutput struct {
	Mode       domain.SplitMode
	Shares     int
	ByCurrency []SplitCurrencyResult

	// Merge mode: the ideal per-recipient payout and base-unit accounting.
	Payouts        []domain.Payout
	BaseCurrencyID string
	TotalBase      decimal.Decimal
	ShareBase      decimal.Decimal
	RemainderBase  decimal.Decimal

	ArchivedCount int
	CreatedCount  int
}

// Split validates the request, computes the division, and reconciles the
// ledger. Validation failures return before any repository access.
func (uc *SplitUseCase) Split(ctx context.Context, input SplitInput) (*SplitOutput, error) {
	req := &domain.SplitRequest{
		VaultID:          input.VaultID,
		PartyMemberCount: input.PartyMemberCount,
		KeepPartyShare:   input.KeepPartyShare,
		Mode:             input.Mode,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var output *SplitOutput

	err := uc.retrier.Retry(ctx, func() error {
		out, err := uc.splitOnce(ctx, req, input.ActorID)
		if err != nil {
			return err
		}

		output = out

		return nil
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.SplitErrors.WithLabelValues(splitErrorReason(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SplitsCompleted.Inc()
		uc.metrics.SplitDuration.Observe(time.Since(start).Seconds())
		uc.metrics.SplitShares.Observe(float64(output.Shares))
		uc.metrics.EntriesArchived.Add(float64(output.ArchivedCount))
		uc.metrics.EntriesCreated.Add(float64(output.CreatedCount))
	}

	return output, nil
}

func splitErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrConcurrentSplit):
		return "concurrent"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrNoBaseCurrency):
		return "no_base_currency"
	case errors.Is(err, domain.ErrVaultNotFound):
		return "vault_not_found"
	default:
		return "internal"
	}
}

func (uc *SplitUseCase) splitOnce(ctx context.Context, req *domain.SplitRequest, actorID string) (*SplitOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Locks the vault row until commit; the per-vault lock is what makes
	// overlapping splits fail fast instead of racing on the same entries.
	vault, err := uc.vaultRepo.GetByIDForUpdate(ctx, tx, req.VaultID)
	if err != nil {
		return nil, err
	}

	if vault.OwnerID != actorID {
		perm, err := uc.permissionRepo.Get(ctx, vault.ID, actorID)
		if err != nil {
			return nil, err
		}

		if !domain.AllowsSplit(vault, actorID, perm) {
			return nil, domain.ErrPermissionDenied
		}
	}

	currencies, err := uc.currencyRepo.ListByVaultTx(ctx, tx, vault.ID)
	if err != nil {
		return nil, err
	}

	totals, err := uc.holdingRepo.TotalsByCurrency(ctx, tx, vault.ID)
	if err != nil {
		return nil, err
	}

	plan, err := domain.ComputeSplit(vault, req, totals, currencies)
	if err != nil {
		return nil, err
	}

	consumed := consumedEntryIDs(plan, totals)
	if len(consumed) == 0 {
		// Nothing to divide; the open transaction discards on rollback.
		return &SplitOutput{
			Mode:       plan.Mode,
			Shares:     plan.Shares,
			ByCurrency: []SplitCurrencyResult{},
		}, nil
	}

	archived, err := uc.holdingRepo.Archive(ctx, tx, consumed)
	if err != nil {
		return nil, err
	}

	// Every consumed row must have been unarchived when we took it. A
	// mismatch means somebody slipped past the vault lock; roll back with
	// the ledger untouched.
	if archived != int64(len(consumed)) {
		return nil, domain.ErrConcurrentSplit
	}

	now := time.Now().UTC()
	entries := uc.buildRetainedEntries(plan, vault, actorID, now)

	if len(entries) > 0 {
		if err := uc.holdingRepo.CreateBatch(ctx, tx, entries); err != nil {
			return nil, err
		}
	}

	logEntry := &domain.ActivityLog{
		ID:      uc.idGen.Generate(),
		VaultID: vault.ID,
		ActorID: actorID,
		Action:  domain.ActivitySplitCompleted,
		Detail: domain.MarshalDetail(map[string]any{
			"mode":           plan.Mode.String(),
			"shares":         plan.Shares,
			"archived_count": len(consumed),
			"created_count":  len(entries),
		}),
		CreatedAt: now,
	}

	if err := uc.activityRepo.CreateTx(ctx, tx, logEntry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balancesCacheKey(req.VaultID))
	}

	return buildSplitOutput(plan, totals, entries, len(consumed)), nil
}

// consumedEntryIDs collects the ledger rows a split will archive. In
// per-currency mode only positive balances participate; in merge mode every
// nonzero balance is folded into the base total.
func consumedEntryIDs(plan *domain.SplitPlan, totals []domain.CurrencyTotal) []string {
	var ids []string

	if plan.Mode == domain.SplitMergeToBase {
		for _, t := range totals {
			if !t.Total.IsZero() {
				ids = append(ids, t.EntryIDs...)
			}
		}

		return ids
	}

	included := make(map[string]bool, len(plan.PerCurrency))
	for _, cs := range plan.PerCurrency {
		included[cs.CurrencyID] = true
	}

	for _, t := range totals {
		if included[t.CurrencyID] {
			ids = append(ids, t.EntryIDs...)
		}
	}

	return ids
}

// buildRetainedEntries creates the ledger rows the vault keeps after a
// split: per-currency remainders and (when keepPartyShare is set) the
// party's own share. Distributed shares to external players are not
// persisted; they are communicated out of band by the caller.
func (uc *SplitUseCase) buildRetainedEntries(plan *domain.SplitPlan, vault *domain.Vault, actorID string, now time.Time) []*domain.HoldingsEntry {
	var changeBy *string
	if actorID != "" {
		changeBy = &actorID
	}

	newEntry := func(currencyID string, value decimal.Decimal) *domain.HoldingsEntry {
		return &domain.HoldingsEntry{
			ID:         uc.idGen.Generate(),
			VaultID:    vault.ID,
			CurrencyID: currencyID,
			Value:      value,
			ChangeBy:   changeBy,
			CreatedAt:  now,
		}
	}

	var entries []*domain.HoldingsEntry

	if plan.Mode == domain.SplitMergeToBase {
		if plan.KeepPartyShare {
			for _, p := range plan.Payouts {
				entries = append(entries, newEntry(p.CurrencyID, p.Quantity))
			}
		}

		// Nonzero rather than positive: a net-debt vault keeps its debt.
		if !plan.RemainderBase.IsZero() {
			entries = append(entries, newEntry(plan.BaseCurrencyID, plan.RemainderBase))
		}

		return entries
	}

	for _, cs := range plan.PerCurrency {
		if cs.Remainder.IsPositive() {
			entries = append(entries, newEntry(cs.CurrencyID, cs.Remainder))
		}

		if plan.KeepPartyShare && cs.ShareAmount.IsPositive() {
			entries = append(entries, newEntry(cs.CurrencyID, cs.ShareAmount))
		}
	}

	return entries
}

// archivedCountsByCurrency mirrors consumedEntryIDs: only entries that were
// actually archived contribute, so the per-currency counts sum to the
// overall archived total.
func archivedCountsByCurrency(plan *domain.SplitPlan, totals []domain.CurrencyTotal) map[string]int {
	counts := make(map[string]int, len(totals))

	if plan.Mode == domain.SplitMergeToBase {
		for _, t := range totals {
			if !t.Total.IsZero() {
				counts[t.CurrencyID] = len(t.EntryIDs)
			}
		}

		return counts
	}

	included := make(map[string]bool, len(plan.PerCurrency))
	for _, cs := range plan.PerCurrency {
		included[cs.CurrencyID] = true
	}

	for _, t := range totals {
		if included[t.CurrencyID] {
			counts[t.CurrencyID] = len(t.EntryIDs)
		}
	}

	return counts
}

func buildSplitOutput(plan *domain.SplitPlan, totals []domain.CurrencyTotal, created []*domain.HoldingsEntry, archivedCount int) *SplitOutput {
	archivedByCurrency := archivedCountsByCurrency(plan, totals)

	createdByCurrency := make(map[string]int, len(created))
	for _, e := range created {
		createdByCurrency[e.CurrencyID]++
	}

	out := &SplitOutput{
		Mode:           plan.Mode,
		Shares:         plan.Shares,
		ByCurrency:     []SplitCurrencyResult{},
		Payouts:        plan.Payouts,
		BaseCurrencyID: plan.BaseCurrencyID,
		TotalBase:      plan.TotalBase,
		ShareBase:      plan.ShareBase,
		RemainderBase:  plan.RemainderBase,
		ArchivedCount:  archivedCount,
		CreatedCount:   len(created),
	}

	if plan.Mode == domain.SplitPerCurrency {
		for _, cs := range plan.PerCurrency {
			out.ByCurrency = append(out.ByCurrency, SplitCurrencyResult{
				CurrencyID:    cs.CurrencyID,
				Total:         cs.Total,
				Shares:        plan.Shares,
				ShareAmount:   cs.ShareAmount,
				Remainder:     cs.Remainder,
				ArchivedCount: archivedByCurrency[cs.CurrencyID],
				CreatedCount:  createdByCurrency[cs.CurrencyID],
			})
		}

		return out
	}

	// Merge mode: one row per payout currency, the base remainder row, and
	// rows for currencies that were archived without a payout, so the
	// caller can account for every consumed entry.
	seen := make(map[string]bool)

	for _, p := range plan.Payouts {
		seen[p.CurrencyID] = true
		out.ByCurrency = append(out.ByCurrency, SplitCurrencyResult{
			CurrencyID:    p.CurrencyID,
			Shares:        plan.Shares,
			ShareAmount:   p.Quantity,
			ArchivedCount: archivedByCurrency[p.CurrencyID],
			CreatedCount:  createdByCurrency[p.CurrencyID],
		})
	}

	if !plan.RemainderBase.IsZero() && !seen[plan.BaseCurrencyID] {
		seen[plan.BaseCurrencyID] = true
		out.ByCurrency = append(out.ByCurrency, SplitCurrencyResult{
			CurrencyID:    plan.BaseCurrencyID,
			Shares:        plan.Shares,
			ShareAmount:   decimal.Zero,
			Remainder:     plan.RemainderBase,
			ArchivedCount: archivedByCurrency[plan.BaseCurrencyID],
			CreatedCount:  createdByCurrency[plan.BaseCurrencyID],
		})
	} else if seen[plan.BaseCurrencyID] {
		for i := range out.ByCurrency {
			if out.ByCurrency[i].CurrencyID == plan.BaseCurrencyID {
				out.ByCurrency[i].Remainder = plan.RemainderBase
			}
		}
	}

	var rest []string
	for id := range archivedByCurrency {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)

	for _, id := range rest {
		out.ByCurrency = append(out.ByCurrency, SplitCurrencyResult{
			CurrencyID:    id,
			Shares:        plan.Shares,
			ShareAmount:   decimal.Zero,
			ArchivedCount: archivedByCurrency[id],
			CreatedCount:  createdByCurrency[id],
		})
	}

	return out
}
