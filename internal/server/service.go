package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "nutrilabel.v1.LabelService"

// LabelServiceServer is the server API. Messages are google.protobuf.Struct
// documents whose keys mirror the JSON envelope.
type LabelServiceServer interface {
	ExtractNutrition(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeImage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeImpact(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListScans(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportScans(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type labelCall func(LabelServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call labelCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LabelServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LabelServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LabelServiceDesc is registered by hand; there is no generated stub.
var LabelServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LabelServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ExtractNutrition", LabelServiceServer.ExtractNutrition),
		unaryMethod("AnalyzeImage", LabelServiceServer.AnalyzeImage),
		unaryMethod("ComputeImpact", LabelServiceServer.ComputeImpact),
		unaryMethod("ListScans", LabelServiceServer.ListScans),
		unaryMethod("ExportScans", LabelServiceServer.ExportScans),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nutrilabel/v1/label.proto",
}

func RegisterLabelServiceServer(s grpc.ServiceRegistrar, srv LabelServiceServer) {
	s.RegisterService(&LabelServiceDesc, srv)
}

// LabelServiceClient calls LabelService over conn.
type LabelServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLabelServiceClient(cc grpc.ClientConnInterface) *LabelServiceClient {
	return &LabelServiceClient{cc: cc}
}

func (c *LabelServiceClient) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LabelServiceClient) ExtractNutrition(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ExtractNutrition", in, opts...)
}

func (c *LabelServiceClient) AnalyzeImage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "AnalyzeImage", in, opts...)
}

func (c *LabelServiceClient) ComputeImpact(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ComputeImpact", in, opts...)
}

func (c *LabelServiceClient) ListScans(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ListScans", in, opts...)
}

func (c *LabelServiceClient) ExportScans(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "ExportScans", in, opts...)
}
