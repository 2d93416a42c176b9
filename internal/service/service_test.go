package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser/internal/auth"
	"github.com/mmynk/splitwiser/internal/metrics"
	"github.com/mmynk/splitwiser/internal/middleware"
	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/storage/sqlite"
)

// recordingPublisher captures published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) record(kind, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind+":"+id)
	return nil
}

func (p *recordingPublisher) PublishExpenseRecorded(_ context.Context, e *models.Expense) error {
	return p.record("expense.recorded", e.ID)
}

func (p *recordingPublisher) PublishExpenseDeleted(_ context.Context, e *models.Expense) error {
	return p.record("expense.deleted", e.ID)
}

func (p *recordingPublisher) PublishSettlementRecorded(_ context.Context, s *models.Settlement) error {
	return p.record("settlement.recorded", s.ID)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type testEnv struct {
	auth      *AuthServiceClient
	groups    *GroupServiceClient
	expenses  *ExpenseServiceClient
	store     *sqlite.SQLiteStore
	publisher *recordingPublisher
}

type testUser struct {
	ID    string
	Token string
}

// setupTestServer wires every service behind the auth interceptor against a
// temporary SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	publisher := &recordingPublisher{}
	m := metrics.New()

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager, PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(NewAuthServiceHandler(NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store, logger), interceptors))
	mux.Handle(NewGroupServiceHandler(NewGroupService(store, m, logger), interceptors))
	mux.Handle(NewExpenseServiceHandler(NewExpenseService(store, publisher, m, logger), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		auth:      NewAuthServiceClient(http.DefaultClient, server.URL),
		groups:    NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:  NewExpenseServiceClient(http.DefaultClient, server.URL),
		store:     store,
		publisher: publisher,
	}
}

func (e *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password123",
	}))
	require.NoError(t, err)
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

func (e *testEnv) createGroup(t *testing.T, admin testUser, members ...testUser) *Group {
	t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), as(admin, &CreateGroupRequest{Name: "Trip", MemberIDs: ids}))
	require.NoError(t, err)
	return resp.Msg.Group
}

// as builds a request authenticated as u.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func debts(list []*Debt) map[string]string {
	out := make(map[string]string, len(list))
	for _, debt := range list {
		out[debt.UserID] = debt.Amount.String()
	}
	return out
}
