// Package rpc carries Connect RPCs with plain Go message structs encoded as
// JSON, and routes a service's procedures under one path prefix.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// CodecName replaces Connect's protojson codec for "application/json".
const CodecName = "json"

// JSONCodec is a connect.Codec for any encoding/json compatible message.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Procedure returns the Connect procedure path, e.g. "/splitwiser.v1.AuthService/Login".
func Procedure(service, method string) string {
	return "/" + service + "/" + method
}

// Service routes the unary procedures of one Connect service.
type Service struct {
	name     string
	opts     []connect.HandlerOption
	handlers map[string]http.Handler
}

// NewService creates a router for the fully qualified service name. The JSON
// codec is added ahead of opts.
func NewService(name string, opts ...connect.HandlerOption) *Service {
	return &Service{
		name:     name,
		opts:     append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...),
		handlers: make(map[string]http.Handler),
	}
}

// Unary registers fn as the handler for method.
func Unary[Req, Res any](s *Service, method string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	procedure := Procedure(s.name, method)
	s.handlers[procedure] = connect.NewUnaryHandler(procedure, fn, s.opts...)
}

// Path is the prefix to mount the service on.
func (s *Service) Path() string {
	return "/" + s.name + "/"
}

// Handler returns the mount path and the handler for every registered procedure.
func (s *Service) Handler() (string, http.Handler) {
	return s.Path(), s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := s.handlers[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.ServeHTTP(w, r)
}

// NewClient creates a typed unary client for service/method on baseURL.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, service, method string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+Procedure(service, method), opts...)
}
