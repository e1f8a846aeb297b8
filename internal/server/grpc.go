package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"
)

// DirectoryServiceName is the fully-qualified gRPC service name.
const DirectoryServiceName = "flock.v1.DirectoryService"

// DirectoryServer is the gRPC surface of flock. Every request and response
// is a google.protobuf.Struct carrying the same JSON document the HTTP API
// uses, so no generated code is needed.
type DirectoryServer interface {
	ListItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddComment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetConfig(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetConfig(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListConfigs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteConfig(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type directoryMethod func(DirectoryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call directoryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DirectoryServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DirectoryServiceName + "/" + name}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DirectoryServiceDesc describes DirectoryServer for grpc.ServiceRegistrar.
var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: DirectoryServiceName,
	HandlerType: (*DirectoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListItems", DirectoryServer.ListItems),
		unaryMethod("GetItem", DirectoryServer.GetItem),
		unaryMethod("CreateItem", DirectoryServer.CreateItem),
		unaryMethod("UpdateItem", DirectoryServer.UpdateItem),
		unaryMethod("DeleteItem", DirectoryServer.DeleteItem),
		unaryMethod("AddComment", DirectoryServer.AddComment),
		unaryMethod("GetDashboard", DirectoryServer.GetDashboard),
		unaryMethod("GetStats", DirectoryServer.GetStats),
		unaryMethod("SetConfig", DirectoryServer.SetConfig),
		unaryMethod("GetConfig", DirectoryServer.GetConfig),
		unaryMethod("ListConfigs", DirectoryServer.ListConfigs),
		unaryMethod("DeleteConfig", DirectoryServer.DeleteConfig),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flock/v1/directory.proto",
}

// NewGRPCServer creates a gRPC server with the standard interceptors and
// registers the directory service, health and reflection.
func NewGRPCServer(s *Server, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	srv.RegisterService(&DirectoryServiceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(DirectoryServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return srv
}

type listItemsRequest struct {
	Collection string `json:"collection"`
	listQuery
}

type idRequest struct {
	ID string `json:"id"`
}

type createItemRequest struct {
	Collection string `json:"collection"`
	createItemInput
}

type updateItemRequest struct {
	ID string `json:"id"`
	updateItemInput
}

type addCommentRequest struct {
	ItemID string `json:"item_id"`
	addCommentInput
}

type configRequest struct {
	Key       string          `json:"key"`
	Namespace string          `json:"namespace"`
	Value     json.RawMessage `json:"value"`
}

// respond converts a result into a Struct, mapping errors to gRPC status.
func respond(v any, err error, entity string) (*structpb.Struct, error) {
	if err != nil {
		return nil, grpcError(err, entity)
	}
	out, err := toStruct(v)
	if err != nil {
		return nil, grpcError(err, entity)
	}
	return out, nil
}

func (s *Server) ListItems(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listItemsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "collection")
	}
	page, err := s.listItems(ctx, req.Collection, req.listQuery)
	return respond(page, err, "collection")
}

func (s *Server) GetItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "item")
	}
	item, err := s.getItem(ctx, req.ID)
	return respond(item, err, "item")
}

func (s *Server) CreateItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req createItemRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "collection")
	}
	item, err := s.createItem(ctx, req.Collection, req.createItemInput)
	return respond(item, err, "collection")
}

func (s *Server) UpdateItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req updateItemRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "item")
	}
	item, err := s.updateItem(ctx, req.ID, req.updateItemInput)
	return respond(item, err, "item")
}

func (s *Server) DeleteItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "item")
	}
	if err := s.deleteItem(ctx, req.ID); err != nil {
		return nil, grpcError(err, "item")
	}
	return &structpb.Struct{}, nil
}

func (s *Server) AddComment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req addCommentRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "item")
	}
	comment, err := s.addComment(ctx, req.ItemID, req.addCommentInput)
	return respond(comment, err, "item")
}

func (s *Server) GetDashboard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Role string `json:"role"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "role")
	}
	d, err := s.getDashboard(ctx, req.Role)
	return respond(d, err, "role")
}

func (s *Server) GetStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	st, err := s.stats(ctx)
	return respond(st, err, "stats")
}

func (s *Server) SetConfig(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req configRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "config")
	}
	cfg, err := s.setConfig(ctx, req.Key, req.Value)
	return respond(cfg, err, "config")
}

func (s *Server) GetConfig(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req configRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "config")
	}
	cfg, err := s.getConfig(ctx, req.Key)
	return respond(cfg, err, "config")
}

func (s *Server) ListConfigs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req configRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "config")
	}
	configs, err := s.listConfigs(ctx, req.Namespace)
	return respond(map[string]any{"configs": configs}, err, "config")
}

func (s *Server) DeleteConfig(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req configRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(err, "config")
	}
	if err := s.deleteConfig(ctx, req.Key); err != nil {
		return nil, grpcError(err, "config")
	}
	return &structpb.Struct{}, nil
}
