package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser/internal/auth"
	"github.com/mmynk/splitwiser/internal/metrics"
	"github.com/mmynk/splitwiser/internal/models"
	"github.com/mmynk/splitwiser/internal/rpc"
)

const testService = "test.v1.WhoAmIService"

type whoRequest struct{}

type whoResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

func whoAmI(ctx context.Context, _ *connect.Request[whoRequest]) (*connect.Response[whoResponse], error) {
	return connect.NewResponse(&whoResponse{UserID: GetUserID(ctx), Email: GetEmail(ctx)}), nil
}

func setupServer(t *testing.T, interceptors ...connect.Interceptor) string {
	t.Helper()
	svc := rpc.NewService(testService, connect.WithInterceptors(interceptors...))
	rpc.Unary(svc, "Private", whoAmI)
	rpc.Unary(svc, "Public", whoAmI)

	mux := http.NewServeMux()
	mux.Handle(svc.Handler())
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func call(t *testing.T, baseURL, method, authorization string) (*whoResponse, error) {
	t.Helper()
	client := rpc.NewClient[whoRequest, whoResponse](http.DefaultClient, baseURL, testService, method)
	req := connect.NewRequest(&whoRequest{})
	if authorization != "" {
		req.Header().Set("Authorization", authorization)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	require.NoError(t, err)

	baseURL := setupServer(t, RequireAuth(jwtManager, rpc.Procedure(testService, "Public")))

	tests := []struct {
		name          string
		method        string
		authorization string
		wantCode      connect.Code
		wantUser      string
	}{
		{name: "valid token", method: "Private", authorization: "Bearer " + token, wantUser: "user-1"},
		{name: "missing token", method: "Private", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", method: "Private", authorization: "Basic " + token, wantCode: connect.CodeUnauthenticated},
		{name: "garbage token", method: "Private", authorization: "Bearer not-a-jwt", wantCode: connect.CodeUnauthenticated},
		{name: "public without token", method: "Public"},
		{name: "public with bad token", method: "Public", authorization: "Bearer not-a-jwt"},
		{name: "public with token", method: "Public", authorization: "Bearer " + token, wantUser: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := call(t, baseURL, tt.method, tt.authorization)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, resp.UserID)
		})
	}
}

func TestBearerToken(t *testing.T) {
	_, err := bearerToken("")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = bearerToken("Bearer ")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = bearerToken("Bearer a b")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	token, err := bearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)
}

func TestLoggingAndMetricsInterceptors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := metrics.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	baseURL := setupServer(t, MetricsInterceptor(m), RequireAuth(jwtManager), LoggingInterceptor(logger))

	_, err := call(t, baseURL, "Private", "")
	require.Error(t, err)

	token, err := jwtManager.Generate(&models.User{ID: "user-2", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = call(t, baseURL, "Private", "Bearer "+token)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "RPC ok")
	assert.Contains(t, buf.String(), "user_id=user-2")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `code="unauthenticated",procedure="/test.v1.WhoAmIService/Private"} 1`)
	assert.Contains(t, body, `code="ok",procedure="/test.v1.WhoAmIService/Private"} 1`)
}

func TestWithUser(t *testing.T) {
	ctx := WithUser(context.Background(), "u1", "u1@example.com")
	assert.Equal(t, "u1", GetUserID(ctx))
	assert.Equal(t, "u1@example.com", GetEmail(ctx))
	assert.Empty(t, GetUserID(context.Background()))
}
