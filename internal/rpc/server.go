// Package rpc exposes the orchestrator as the gRPC service
// memory.v1.SceneService. Messages travel as google.protobuf.Struct so the
// service needs no generated code.
package rpc

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/scene-memory/internal/memory"
	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
	"github.com/danielpatrickdp/scene-memory/internal/similarity"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "memory.v1.SceneService"

// #region service-desc

// SceneServiceServer is the server API of memory.v1.SceneService.
type SceneServiceServer interface {
	AddFrame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Recall(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecallSimilar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ShortestAssociation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReinforcePath(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Groups(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(SceneServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SceneServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SceneServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes memory.v1.SceneService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SceneServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddFrame", SceneServiceServer.AddFrame),
		unary("Recall", SceneServiceServer.Recall),
		unary("RecallSimilar", SceneServiceServer.RecallSimilar),
		unary("ShortestAssociation", SceneServiceServer.ShortestAssociation),
		unary("ReinforcePath", SceneServiceServer.ReinforcePath),
		unary("Groups", SceneServiceServer.Groups),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "memory/v1/scene.proto",
}

// #endregion service-desc

// #region server

// Server implements SceneServiceServer on top of an orchestrator.
type Server struct {
	orch       *orchestrator.Orchestrator
	strategies *similarity.Registry
}

// NewServer returns a Server backed by orch.
func NewServer(orch *orchestrator.Orchestrator) *Server {
	return &Server{orch: orch, strategies: similarity.NewRegistry()}
}

// Register attaches the service to gs.
func Register(gs *grpc.Server, srv SceneServiceServer) {
	gs.RegisterService(&ServiceDesc, srv)
}

// NewGRPCServer returns a grpc.Server with the service registered and error
// logging installed.
func NewGRPCServer(orch *orchestrator.Orchestrator, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.UnaryInterceptor(logErrors))
	gs := grpc.NewServer(opts...)
	Register(gs, NewServer(orch))
	return gs
}

func logErrors(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("[RPC] %s: %v", info.FullMethod, err)
	}
	return resp, err
}

// #endregion server

// #region handlers

// AddFrame ingests one frame.
func (s *Server) AddFrame(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in orchestrator.FrameInput
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.orch.Ingest(ctx, in)
	if errors.Is(err, memory.ErrInvalidFeatureValue) {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return encode(res)
}

// Recall returns one memory's context.
func (s *Server) Recall(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in RecallRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	ctx := s.orch.Memory().Recall(in.Label)
	return encode(RecallResponse{Found: ctx != nil, Context: ctx})
}

// RecallSimilar scores a query context against every memory.
func (s *Server) RecallSimilar(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in RecallSimilarRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.Query == nil {
		in.Query = memory.NewContext()
	}
	threshold := memory.DefaultSimilarityThreshold
	if in.Threshold != nil {
		threshold = *in.Threshold
	}
	matches := s.orch.Memory().RecallSimilar(in.Query, threshold)
	return encode(RecallSimilarResponse{Matches: matches})
}

// ShortestAssociation returns the cheapest weighted path.
func (s *Server) ShortestAssociation(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in PathRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	path, cost := s.orch.Memory().ShortestAssociationCost(in.From, in.To)
	return encode(PathResponse{Path: path, Cost: cost})
}

// ReinforcePath reinforces the fewest-hop path.
func (s *Server) ReinforcePath(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in PathRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	path := s.orch.Memory().ReinforcePath(in.From, in.To)
	return encode(PathResponse{Path: path, Cost: float64(max(len(path)-1, 0))})
}

// Groups lists scene groups, or with a label the members recalled from that
// group.
func (s *Server) Groups(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in GroupsRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	sc := s.orch.Scene()

	if in.Label == "" {
		groups := sc.Groups()
		var out GroupsResponse
		for _, label := range sc.GroupLabels() {
			out.Groups = append(out.Groups, GroupSummary{Label: label, Members: memberLabels(groups[label])})
		}
		return encode(out)
	}

	var st similarity.Strategy
	if in.Strategy != "" {
		var err error
		if st, err = s.strategies.Lookup(in.Strategy); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	tolerance := s.orch.Config().VarianceTolerance
	if in.Tolerance != nil {
		tolerance = *in.Tolerance
	}
	var members []string
	for _, m := range sc.RecallFromGroup(in.Label, tolerance, st) {
		members = append(members, m.Label)
	}
	return encode(GroupsResponse{Groups: []GroupSummary{{Label: in.Label, Members: members}}})
}

func memberLabels(members []*memory.Context) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String("label", ""))
	}
	return out
}

func encode(v any) (*structpb.Struct, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// #endregion handlers

var _ SceneServiceServer = (*Server)(nil)
