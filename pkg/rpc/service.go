package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "talklike.v1.Transformer"

// TransformerServer is the server API for talklike.v1.Transformer.
type TransformerServer interface {
	Transform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFilters(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Describe(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterTransformerServer registers srv on s.
func RegisterTransformerServer(s grpc.ServiceRegistrar, srv TransformerServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransformerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Transform", Handler: transformHandler},
		{MethodName: "ListFilters", Handler: listFiltersHandler},
		{MethodName: "Describe", Handler: describeHandler},
	},
	Metadata: "talklike/v1/transformer.proto",
}

func transformHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformerServer).Transform(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Transform"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TransformerServer).Transform(ctx, req.(*structpb.Struct))
	})
}

func listFiltersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformerServer).ListFilters(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListFilters"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TransformerServer).ListFilters(ctx, req.(*emptypb.Empty))
	})
}

func describeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformerServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Describe"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(TransformerServer).Describe(ctx, req.(*structpb.Struct))
	})
}

// Service implements TransformerServer on a pipeline runner.
type Service struct {
	runner *pipeline.Runner
}

var _ TransformerServer = (*Service)(nil)

// NewService returns a Service backed by runner.
func NewService(runner *pipeline.Runner) *Service {
	return &Service{runner: runner}
}

func (s *Service) Transform(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	opts := pipeline.Options{
		Filter:  fields["filter"].GetStringValue(),
		Text:    fields["text"].GetStringValue(),
		Refresh: fields["refresh"].GetBoolValue(),
	}
	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		return nil, statusError(err)
	}
	return structpb.NewStruct(map[string]any{
		"result": res.Output,
		"filter": res.Filter,
		"cached": res.CacheInfo.ResultHit,
	})
}

func (s *Service) ListFilters(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	entries, err := s.runner.List(ctx)
	if err != nil {
		return nil, statusError(err)
	}
	filters := make([]any, len(entries))
	for i, e := range entries {
		m := map[string]any{"id": e.ID, "name": e.Name, "source": e.Source}
		if e.Description != "" {
			m["description"] = e.Description
		}
		if e.Error != "" {
			m["error"] = e.Error
		}
		filters[i] = m
	}
	return structpb.NewStruct(map[string]any{"filters": filters})
}

func (s *Service) Describe(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id := catalog.NormalizeID(in.GetFields()["filter"].GetStringValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "filter is required")
	}
	c, err := s.runner.Compile(ctx, id)
	if err != nil {
		return nil, statusError(err)
	}
	stages := make([]any, 0, len(c.Filter.Describe()))
	for _, info := range c.Filter.Describe() {
		rules := make([]any, len(info.Rules))
		for i, r := range info.Rules {
			rules[i] = r
		}
		stages = append(stages, map[string]any{"kind": string(info.Kind), "rules": rules})
	}
	return structpb.NewStruct(map[string]any{"filter": c.ID, "stages": stages})
}

// statusError maps an error code to a gRPC status.
func statusError(err error) error {
	code := codes.Internal
	switch c := errors.GetCode(err); {
	case errors.IsNotFound(err):
		code = codes.NotFound
	case errors.IsDefinitionError(err):
		code = codes.FailedPrecondition
	case c == errors.ErrCodeInvalidInput, c == errors.ErrCodeInvalidName, c == errors.ErrCodeInvalidPath:
		code = codes.InvalidArgument
	case c == errors.ErrCodeTimeout:
		code = codes.DeadlineExceeded
	case c == errors.ErrCodeNetwork:
		code = codes.Unavailable
	}
	return status.Error(code, errors.UserMessage(err))
}
