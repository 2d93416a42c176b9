package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitwiser/internal/ledger"
	"github.com/mmynk/splitwiser/internal/metrics"
	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/storage"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
// m may be nil.
func NewGroupService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, metrics: m, logger: logger}
}

// CreateGroup creates a new group with the caller as admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateGroup request received",
		"user_id", userID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name required")
	}

	members := []models.Member{{UserID: userID, Role: models.RoleAdmin}}
	others := dedupe(req.Msg.MemberIDs, userID)
	if err := s.requireUsers(ctx, others); err != nil {
		return nil, err
	}
	for _, id := range others {
		members = append(members, models.Member{UserID: id, Role: models.RoleMember})
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		Members:     members,
		CreatedBy:   userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&CreateGroupResponse{Group: toGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		s.logger.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&GetGroupResponse{Group: toGroup(group)}), nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*Group, len(groups))
	for i, g := range groups {
		out[i] = toGroup(g)
	}

	s.logger.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&ListGroupsResponse{Groups: out}), nil
}

// AddGroupMembers adds users to a group. Only admins may add members.
func (s *GroupService) AddGroupMembers(ctx context.Context, req *connect.Request[AddGroupMembersRequest]) (*connect.Response[AddGroupMembersResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("AddGroupMembers request received", "group_id", req.Msg.GroupID, "count", len(req.Msg.UserIDs))

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !isAdmin(group, userID) {
		return nil, toConnectError(errAdminOnly)
	}

	ids := dedupe(req.Msg.UserIDs, "")
	if len(ids) == 0 {
		return nil, invalidArgument("at least one user required")
	}
	if err := s.requireUsers(ctx, ids); err != nil {
		return nil, err
	}

	members := make([]models.Member, len(ids))
	for i, id := range ids {
		members[i] = models.Member{UserID: id, Role: models.RoleMember}
	}
	if err := s.store.AddGroupMembers(ctx, group.ID, members); err != nil {
		s.logger.Error("AddGroupMembers failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Group members added", "group_id", group.ID, "members", len(updated.Members))
	return connect.NewResponse(&AddGroupMembersResponse{Group: toGroup(updated)}), nil
}

// GetGroupBalances reconciles every expense and settlement in a group into
// per-member balances.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	s.logger.Info("GetGroupBalances request received", "group_id", groupID, "user_id", userID)

	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}

	group, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		s.logger.Warn("GetGroupBalances failed", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	var (
		expenses    []*models.Expense
		settlements []*models.Settlement
		users       map[string]*models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpensesByGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, err = s.store.ListSettlementsByGroup(gctx, groupID)
		return err
	})
	g.Go(func() error {
		ids := make([]string, len(group.Members))
		for i, m := range group.Members {
			ids[i] = m.UserID
		}
		var err error
		users, err = s.store.GetUsersByIDs(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("GetGroupBalances failed - could not load records", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	memberIDs := group.MemberIDs()
	result, err := ledger.Accumulate(memberIDs, models.LedgerExpenses(expenses), models.LedgerSettlements(settlements))
	if err != nil {
		s.metrics.ObserveBalance(metrics.ScopeGroup, nil, err)
		s.logger.Error("GetGroupBalances failed - ledger rejected", "group_id", groupID, "error", err)
		return nil, toConnectError(fmt.Errorf("group %s: %w", groupID, err))
	}
	s.metrics.ObserveBalance(metrics.ScopeGroup, result.Warnings, nil)
	for _, w := range result.Warnings {
		s.logger.Warn("Ledger warning", "group_id", groupID, "kind", w.Kind, "record_id", w.RecordID, "message", w.Message)
	}

	views := ledger.Project(memberIDs, result.Totals, result.Ledger)

	members := make([]*User, 0, len(group.Members))
	lookup := make(map[string]*User, len(users))
	for _, m := range group.Members {
		if u, ok := users[m.UserID]; ok {
			wire := toUser(u)
			members = append(members, wire)
			lookup[u.ID] = wire
		}
	}

	s.logger.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"warnings", len(result.Warnings),
	)

	return connect.NewResponse(&GetGroupBalancesResponse{
		Group:       toGroup(group),
		Members:     members,
		Expenses:    toExpenses(expenses),
		Settlements: toSettlements(settlements),
		Balances:    toBalances(views),
		UserLookup:  lookup,
		Warnings:    toWarnings(result.Warnings),
	}), nil
}

// requireUsers fails with InvalidArgument when any id is not a registered user.
func (s *GroupService) requireUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
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

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, errNotGroupMember
	}
	return group, nil
}

func isAdmin(group *models.Group, userID string) bool {
	for _, m := range group.Members {
		if m.UserID == userID {
			return m.Role == models.RoleAdmin
		}
	}
	return false
}

// dedupe drops blanks, duplicates and skip, keeping first-seen order.
func dedupe(ids []string, skip string) []string {
	seen := map[string]bool{skip: true, "": true}
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
