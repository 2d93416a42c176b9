package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitwiser/internal/events"
	"github.com/mmynk/splitwiser/internal/ledger"
	"github.com/mmynk/splitwiser/internal/metrics"
	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/splits"
	"github.com/mmynk/splitwiser/internal/storage"
)

// SplitTypeCustom marks expenses created from explicit splits.
const SplitTypeCustom = "custom"

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewExpenseService creates a new ExpenseService. A nil publisher disables
// events and m may be nil.
func NewExpenseService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *ExpenseService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ExpenseService{store: store, publisher: publisher, metrics: m, logger: logger}
}

// CreateExpense records a group or direct expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("CreateExpense request received",
		"user_id", userID,
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"split_type", msg.SplitType,
	)

	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument("description required")
	}
	if !msg.Amount.IsPositive() {
		return nil, invalidArgument("amount must be positive")
	}
	payer := msg.PaidByUserID
	if payer == "" {
		payer = userID
	}

	var group *models.Group
	if msg.GroupID != "" {
		if group, err = memberGroup(ctx, s.store, msg.GroupID, userID); err != nil {
			return nil, toConnectError(err)
		}
	}

	splitType, ledgerSplits, err := buildSplits(msg, group)
	if err != nil {
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		Description:  description,
		Amount:       msg.Amount,
		PaidByUserID: payer,
		GroupID:      msg.GroupID,
		SplitType:    splitType,
		Date:         msg.Date,
		CreatedBy:    userID,
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}
	for _, split := range ledgerSplits {
		expense.Splits = append(expense.Splits, models.Split{
			UserID: string(split.Member),
			Amount: split.Amount,
			Paid:   split.Settled,
		})
	}

	if err := s.checkParticipants(ctx, group, userID, expense); err != nil {
		return nil, err
	}

	record := expense.ToLedger()
	if err := ledger.ValidateExpense(record); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	var warnings []ledger.Warning
	if mismatch, sum := ledger.SplitSumMismatch(record); mismatch {
		warnings = append(warnings, ledger.Warning{
			Kind:    ledger.WarningSplitSum,
			Record:  ledger.RecordExpense,
			Message: "splits sum to " + sum.String() + ", expense amount is " + expense.Amount.String(),
		})
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	for i := range warnings {
		warnings[i].RecordID = expense.ID
	}

	if err := s.publisher.PublishExpenseRecorded(ctx, expense); err != nil {
		s.logger.Error("Failed to publish expense event", "expense_id", expense.ID, "error", err)
	}

	s.logger.Info("Expense created", "expense_id", expense.ID, "splits", len(expense.Splits), "warnings", len(warnings))
	return connect.NewResponse(&CreateExpenseResponse{
		Expense:  toExpense(expense),
		Warnings: toWarnings(warnings),
	}), nil
}

// buildSplits produces the splits of a new expense. Explicit splits are kept
// as given; otherwise shares are divided by split type. An equal group split
// without shares covers every group member.
func buildSplits(msg *CreateExpenseRequest, group *models.Group) (string, []ledger.Split, error) {
	if len(msg.Splits) > 0 {
		out := make([]ledger.Split, len(msg.Splits))
		seen := make(map[string]bool, len(msg.Splits))
		for i, s := range msg.Splits {
			if s == nil {
				return "", nil, invalidArgument("split %d is empty", i)
			}
			if seen[s.UserID] {
				return "", nil, fmt.Errorf("%w: %s", splits.ErrDuplicate, s.UserID)
			}
			seen[s.UserID] = true
			out[i] = ledger.Split{Member: ledger.MemberID(s.UserID), Amount: s.Amount, Settled: s.Paid}
		}
		return SplitTypeCustom, out, nil
	}

	mode := splits.Mode(msg.SplitType)
	if mode == "" {
		mode = splits.ModeEqual
	}

	shares := make([]splits.Share, 0, len(msg.Shares))
	for i, s := range msg.Shares {
		if s == nil {
			return "", nil, invalidArgument("share %d is empty", i)
		}
		shares = append(shares, splits.Share{Member: ledger.MemberID(s.UserID), Value: s.Value})
	}
	if len(shares) == 0 && mode == splits.ModeEqual && group != nil {
		for _, id := range group.MemberIDs() {
			shares = append(shares, splits.Share{Member: id})
		}
	}

	out, err := splits.Build(mode, msg.Amount, shares)
	if err != nil {
		return "", nil, err
	}
	return string(mode), out, nil
}

// checkParticipants verifies that the payer and every split belong to the
// group, or for direct expenses that they are registered users and the caller
// takes part.
func (s *ExpenseService) checkParticipants(ctx context.Context, group *models.Group, userID string, expense *models.Expense) error {
	ids := []string{expense.PaidByUserID}
	for _, split := range expense.Splits {
		ids = append(ids, split.UserID)
	}

	if group != nil {
		for _, id := range ids {
			if !group.HasMember(id) {
				return invalidArgument("user %s is not a member of group %s", id, group.ID)
			}
		}
		return nil
	}

	if !expense.Involves(userID) {
		return toConnectError(errNotParticipant)
	}
	found, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return invalidArgument("user %s not found", id)
		}
	}
	return nil
}

// DeleteExpense removes an expense. Only its creator or payer may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID, "user_id", userID)

	if req.Msg.ExpenseID == "" {
		return nil, invalidArgument("expense_id required")
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if expense.CreatedBy != userID && expense.PaidByUserID != userID {
		s.logger.Warn("DeleteExpense denied", "expense_id", expense.ID, "user_id", userID)
		return nil, toConnectError(errNotAllowed)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.publisher.PublishExpenseDeleted(ctx, expense); err != nil {
		s.logger.Error("Failed to publish expense event", "expense_id", expense.ID, "error", err)
	}

	s.logger.Info("Expense deleted", "expense_id", expense.ID)
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// CreateSettlement records a payment from one user to another.
func (s *ExpenseService) CreateSettlement(ctx context.Context, req *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Info("CreateSettlement request received",
		"user_id", userID,
		"group_id", msg.GroupID,
		"paid_by", msg.PaidByUserID,
		"received_by", msg.ReceivedByUserID,
		"amount", msg.Amount,
	)

	payer := msg.PaidByUserID
	if payer == "" {
		payer = userID
	}
	if msg.ReceivedByUserID == "" {
		return nil, invalidArgument("received_by_user_id required")
	}
	if payer == msg.ReceivedByUserID {
		return nil, invalidArgument("cannot settle with yourself")
	}

	settlement := &models.Settlement{
		GroupID:          msg.GroupID,
		PaidByUserID:     payer,
		ReceivedByUserID: msg.ReceivedByUserID,
		Amount:           msg.Amount,
		Note:             strings.TrimSpace(msg.Note),
		Date:             msg.Date,
		CreatedBy:        userID,
	}
	if settlement.Date == 0 {
		settlement.Date = time.Now().Unix()
	}
	if err := ledger.ValidateSettlement(settlement.ToLedger()); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if msg.GroupID != "" {
		group, err := memberGroup(ctx, s.store, msg.GroupID, userID)
		if err != nil {
			return nil, toConnectError(err)
		}
		for _, id := range []string{payer, msg.ReceivedByUserID} {
			if !group.HasMember(id) {
				return nil, invalidArgument("user %s is not a member of group %s", id, group.ID)
			}
		}
	} else {
		if userID != payer && userID != msg.ReceivedByUserID {
			return nil, toConnectError(errNotParticipant)
		}
		if _, err := s.store.GetUserByID(ctx, msg.ReceivedByUserID); err != nil {
			return nil, toConnectError(err)
		}
		if _, err := s.store.GetUserByID(ctx, payer); err != nil {
			return nil, toConnectError(err)
		}
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		s.logger.Error("CreateSettlement failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	if err := s.publisher.PublishSettlementRecorded(ctx, settlement); err != nil {
		s.logger.Error("Failed to publish settlement event", "settlement_id", settlement.ID, "error", err)
	}

	s.logger.Info("Settlement created", "settlement_id", settlement.ID)
	return connect.NewResponse(&CreateSettlementResponse{Settlement: toSettlement(settlement)}), nil
}

// GetExpensesBetweenUsers returns the direct records shared by the caller and
// another user together with their signed balance.
func (s *ExpenseService) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[GetExpensesBetweenUsersRequest]) (*connect.Response[GetExpensesBetweenUsersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	otherID := req.Msg.OtherUserID
	s.logger.Info("GetExpensesBetweenUsers request received", "user_id", userID, "other_user_id", otherID)

	if otherID == "" {
		return nil, invalidArgument("other_user_id required")
	}
	if otherID == userID {
		return nil, connect.NewError(connect.CodeInvalidArgument, ledger.ErrSamePair)
	}

	other, err := s.store.GetUserByID(ctx, otherID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var mine, theirs []*models.Expense
	var settlements []*models.Settlement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mine, err = s.store.ListDirectExpensesPaidBy(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		theirs, err = s.store.ListDirectExpensesPaidBy(gctx, otherID)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, err = s.store.ListDirectSettlementsBetween(gctx, userID, otherID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("GetExpensesBetweenUsers failed - could not load records", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	all := append(mine, theirs...)
	me, them := ledger.MemberID(userID), ledger.MemberID(otherID)
	shared, _ := ledger.DirectBetween(me, them, models.LedgerExpenses(all), nil)
	keep := make(map[string]bool, len(shared))
	for _, e := range shared {
		keep[e.ID] = true
	}
	expenses := make([]*models.Expense, 0, len(shared))
	for _, e := range all {
		if keep[e.ID] {
			expenses = append(expenses, e)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		if expenses[i].Date != expenses[j].Date {
			return expenses[i].Date > expenses[j].Date
		}
		return expenses[i].CreatedAt > expenses[j].CreatedAt
	})

	balance, warnings, err := ledger.PairBalance(me, them, models.LedgerExpenses(expenses), models.LedgerSettlements(settlements))
	s.metrics.ObserveBalance(metrics.ScopePair, warnings, err)
	if err != nil {
		s.logger.Error("GetExpensesBetweenUsers failed - ledger rejected", "error", err)
		return nil, toConnectError(err)
	}
	for _, w := range warnings {
		s.logger.Warn("Ledger warning", "kind", w.Kind, "record_id", w.RecordID, "message", w.Message)
	}

	s.logger.Info("GetExpensesBetweenUsers successful",
		"user_id", userID,
		"other_user_id", otherID,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"balance", balance,
	)

	return connect.NewResponse(&GetExpensesBetweenUsersResponse{
		OtherUser:   toUser(other),
		Expenses:    toExpenses(expenses),
		Settlements: toSettlements(settlements),
		Balance:     balance,
		Warnings:    toWarnings(warnings),
	}), nil
}
