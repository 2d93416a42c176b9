package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitwiser/internal/rpc"
)

// Fully qualified service names.
const (
	AuthServiceName    = "splitwiser.v1.AuthService"
	GroupServiceName   = "splitwiser.v1.GroupService"
	ExpenseServiceName = "splitwiser.v1.ExpenseService"
)

// Procedures that do not require a bearer token.
var PublicProcedures = []string{
	rpc.Procedure(AuthServiceName, "Register"),
	rpc.Procedure(AuthServiceName, "Login"),
}

// NewAuthServiceHandler builds an HTTP handler for the AuthService.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc *AuthService, opts ...connect.HandlerOption) (string, http.Handler) {
	s := rpc.NewService(AuthServiceName, opts...)
	rpc.Unary(s, "Register", svc.Register)
	rpc.Unary(s, "Login", svc.Login)
	rpc.Unary(s, "GetCurrentUser", svc.GetCurrentUser)
	rpc.Unary(s, "SearchUsers", svc.SearchUsers)
	return s.Handler()
}

// NewGroupServiceHandler builds an HTTP handler for the GroupService.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	s := rpc.NewService(GroupServiceName, opts...)
	rpc.Unary(s, "CreateGroup", svc.CreateGroup)
	rpc.Unary(s, "GetGroup", svc.GetGroup)
	rpc.Unary(s, "ListGroups", svc.ListGroups)
	rpc.Unary(s, "AddGroupMembers", svc.AddGroupMembers)
	rpc.Unary(s, "GetGroupBalances", svc.GetGroupBalances)
	return s.Handler()
}

// NewExpenseServiceHandler builds an HTTP handler for the ExpenseService.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	s := rpc.NewService(ExpenseServiceName, opts...)
	rpc.Unary(s, "CreateExpense", svc.CreateExpense)
	rpc.Unary(s, "DeleteExpense", svc.DeleteExpense)
	rpc.Unary(s, "CreateSettlement", svc.CreateSettlement)
	rpc.Unary(s, "GetExpensesBetweenUsers", svc.GetExpensesBetweenUsers)
	return s.Handler()
}

// AuthServiceClient is a client for the AuthService.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	searchUsers    *connect.Client[SearchUsersRequest, SearchUsersResponse]
}

// NewAuthServiceClient constructs a client for the AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       rpc.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceName, "Register", opts...),
		login:          rpc.NewClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceName, "Login", opts...),
		getCurrentUser: rpc.NewClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceName, "GetCurrentUser", opts...),
		searchUsers:    rpc.NewClient[SearchUsersRequest, SearchUsersResponse](httpClient, baseURL, AuthServiceName, "SearchUsers", opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) SearchUsers(ctx context.Context, req *connect.Request[SearchUsersRequest]) (*connect.Response[SearchUsersResponse], error) {
	return c.searchUsers.CallUnary(ctx, req)
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient struct {
	createGroup      *connect.Client[CreateGroupRequest, CreateGroupResponse]
	getGroup         *connect.Client[GetGroupRequest, GetGroupResponse]
	listGroups       *connect.Client[ListGroupsRequest, ListGroupsResponse]
	addGroupMembers  *connect.Client[AddGroupMembersRequest, AddGroupMembersResponse]
	getGroupBalances *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup:      rpc.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL, GroupServiceName, "CreateGroup", opts...),
		getGroup:         rpc.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL, GroupServiceName, "GetGroup", opts...),
		listGroups:       rpc.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL, GroupServiceName, "ListGroups", opts...),
		addGroupMembers:  rpc.NewClient[AddGroupMembersRequest, AddGroupMembersResponse](httpClient, baseURL, GroupServiceName, "AddGroupMembers", opts...),
		getGroupBalances: rpc.NewClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL, GroupServiceName, "GetGroupBalances", opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddGroupMembers(ctx context.Context, req *connect.Request[AddGroupMembersRequest]) (*connect.Response[AddGroupMembersResponse], error) {
	return c.addGroupMembers.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

// ExpenseServiceClient is a client for the ExpenseService.
type ExpenseServiceClient struct {
	createExpense           *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	deleteExpense           *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	createSettlement        *connect.Client[CreateSettlementRequest, CreateSettlementResponse]
	getExpensesBetweenUsers *connect.Client[GetExpensesBetweenUsersRequest, GetExpensesBetweenUsersResponse]
}

// NewExpenseServiceClient constructs a client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense:           rpc.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL, ExpenseServiceName, "CreateExpense", opts...),
		deleteExpense:           rpc.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceName, "DeleteExpense", opts...),
		createSettlement:        rpc.NewClient[CreateSettlementRequest, CreateSettlementResponse](httpClient, baseURL, ExpenseServiceName, "CreateSettlement", opts...),
		getExpensesBetweenUsers: rpc.NewClient[GetExpensesBetweenUsersRequest, GetExpensesBetweenUsersResponse](httpClient, baseURL, ExpenseServiceName, "GetExpensesBetweenUsers", opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpensesBetweenUsers(ctx context.Context, req *connect.Request[GetExpensesBetweenUsersRequest]) (*connect.Response[GetExpensesBetweenUsersResponse], error) {
	return c.getExpensesBetweenUsers.CallUnary(ctx, req)
}
