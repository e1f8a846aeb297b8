package client

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/flock/internal/dashboard"
	"github.com/alfredjeanlab/flock/internal/model"
)

// serviceName is the fully qualified gRPC service the server registers.
const serviceName = "flock.v1.DirectoryService"

// GRPCClient implements Client using the gRPC transport. Messages are
// google.protobuf.Struct documents with the same shape as the HTTP API's
// JSON bodies.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// NewGRPCClient connects to the given gRPC address and returns a client.
// When token is non-empty it is sent as a Bearer token on every call.
func NewGRPCClient(addr, token string) (*GRPCClient, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if token != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(bearerInterceptor(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &GRPCClient{conn: conn}, nil
}

// NewGRPCClientWithConn wraps an existing connection.
func NewGRPCClientWithConn(conn *grpc.ClientConn) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func bearerInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// call invokes method with req encoded as a Struct and decodes the reply
// into result. A nil result discards the reply.
func (c *GRPCClient) call(ctx context.Context, method string, req, result any) error {
	in, err := encodeStruct(req)
	if err != nil {
		return err
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return decodeStruct(out, result)
}

// --- Items ---

func (c *GRPCClient) ListCollections(_ context.Context) ([]model.CollectionSpec, error) {
	return nil, fmt.Errorf("ListCollections is not supported over gRPC transport; use --transport=http")
}

func (c *GRPCClient) ListItems(ctx context.Context, collection string, req *ListItemsRequest) (*ItemPage, error) {
	msg := struct {
		Collection string `json:"collection"`
		*ListItemsRequest
	}{collection, req}
	var page ItemPage
	if err := c.call(ctx, "ListItems", msg, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *GRPCClient) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	if err := c.call(ctx, "GetItem", map[string]string{"id": id}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *GRPCClient) CreateItem(ctx context.Context, collection string, req *CreateItemRequest) (*model.Item, error) {
	msg := struct {
		Collection string `json:"collection"`
		*CreateItemRequest
	}{collection, req}
	var item model.Item
	if err := c.call(ctx, "CreateItem", msg, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *GRPCClient) UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*model.Item, error) {
	msg := struct {
		ID string `json:"id"`
		*UpdateItemRequest
	}{id, req}
	var item model.Item
	if err := c.call(ctx, "UpdateItem", msg, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *GRPCClient) DeleteItem(ctx context.Context, id string) error {
	return c.call(ctx, "DeleteItem", map[string]string{"id": id}, nil)
}

// --- Comments and events ---

func (c *GRPCClient) AddComment(ctx context.Context, itemID, author, text string) (*model.Comment, error) {
	msg := map[string]string{"item_id": itemID, "author": author, "text": text}
	var comment model.Comment
	if err := c.call(ctx, "AddComment", msg, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *GRPCClient) GetComments(_ context.Context, _ string) ([]*model.Comment, error) {
	return nil, fmt.Errorf("GetComments is not supported over gRPC transport; use --transport=http")
}

func (c *GRPCClient) GetEvents(_ context.Context, _ string) ([]*model.Event, error) {
	return nil, fmt.Errorf("GetEvents is not supported over gRPC transport; use --transport=http")
}

// --- Dashboards ---

func (c *GRPCClient) GetDashboard(ctx context.Context, role string) (*dashboard.Dashboard, error) {
	var d dashboard.Dashboard
	if err := c.call(ctx, "GetDashboard", map[string]string{"role": role}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *GRPCClient) ListRoles(_ context.Context) ([]RoleInfo, error) {
	return nil, fmt.Errorf("ListRoles is not supported over gRPC transport; use --transport=http")
}

func (c *GRPCClient) GetStats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := c.call(ctx, "GetStats", struct{}{}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// --- Config ---

func (c *GRPCClient) SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	msg := map[string]any{"key": key, "value": value}
	var config model.Config
	if err := c.call(ctx, "SetConfig", msg, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *GRPCClient) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	var config model.Config
	if err := c.call(ctx, "GetConfig", map[string]string{"key": key}, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *GRPCClient) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	if err := c.call(ctx, "ListConfigs", map[string]string{"namespace": namespace}, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *GRPCClient) DeleteConfig(ctx context.Context, key string) error {
	return c.call(ctx, "DeleteConfig", map[string]string{"key": key}, nil)
}

// --- Health ---

// Health queries the standard gRPC health service and reports "ok" when
// the server is serving.
func (c *GRPCClient) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return "", err
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return resp.GetStatus().String(), nil
	}
	return "ok", nil
}

// --- Struct conversions ---

func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("convert request: %w", err)
	}
	return s, nil
}

func decodeStruct(s *structpb.Struct, dst any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("convert response: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
