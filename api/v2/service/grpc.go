package service

import (
	"context"
	"strconv"

	"github.com/MinterTeam/minter-presale/core/query"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const grpcServiceName = "presale.v2.ApiService"

// ApiServiceServer is the gRPC face of the Service. Requests and responses
// are well known Struct messages carrying the same JSON the REST routes use.
type ApiServiceServer interface {
	Status(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Query(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Events(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Subscribe(*structpb.Struct, grpc.ServerStream) error
}

// GRPCServer adapts Service to ApiServiceServer
type GRPCServer struct {
	service *Service
}

func NewGRPCServer(service *Service) *GRPCServer {
	return &GRPCServer{service: service}
}

func RegisterApiServiceServer(s *grpc.Server, srv ApiServiceServer) {
	s.RegisterService(&apiServiceDesc, srv)
}

func (g *GRPCServer) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return g.respond(g.service.Status(ctx))
}

// Query expects {"query": {...}, "height": "N"}
func (g *GRPCServer) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	height, err := uintField(req, "height")
	if err != nil {
		return nil, err
	}

	raw, err := protojson.Marshal(req.GetFields()["query"].GetStructValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	q, err := query.Decode(raw)
	if err != nil {
		return nil, g.service.statusError(err)
	}

	return g.respond(g.service.Query(ctx, q, height))
}

func (g *GRPCServer) SendTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return g.respond(g.service.SendTransaction(ctx, req.GetFields()["tx"].GetStringValue()))
}

func (g *GRPCServer) CheckTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return g.respond(g.service.CheckTransaction(ctx, req.GetFields()["tx"].GetStringValue()))
}

func (g *GRPCServer) Events(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	height, err := uintField(req, "height")
	if err != nil {
		return nil, err
	}
	return g.respond(g.service.Events(ctx, height))
}

func (g *GRPCServer) Subscribe(req *structpb.Struct, stream grpc.ServerStream) error {
	remote := "grpc"
	if p, ok := peer.FromContext(stream.Context()); ok {
		remote = p.Addr.String()
	}

	return g.service.Subscribe(stream.Context(), remote, req.GetFields()["query"].GetStringValue(), nil, func(response *SubscribeResponse) error {
		data, err := toStruct(response)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		return stream.SendMsg(data)
	})
}

func (g *GRPCServer) respond(result interface{}, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, err
	}

	data, err := toStruct(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return data, nil
}

// uintField accepts both numbers and decimal strings, a missing field is 0
func uintField(req *structpb.Struct, name string) (uint64, error) {
	value, ok := req.GetFields()[name]
	if !ok {
		return 0, nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return parseUint(name, kind.StringValue)
	case *structpb.Value_NumberValue:
		if kind.NumberValue < 0 {
			return 0, status.Errorf(codes.InvalidArgument, "invalid %s: negative", name)
		}
		return uint64(kind.NumberValue), nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %s", name, strconv.Quote(value.String()))
	}
}

func unaryHandler(method string, call func(srv ApiServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ApiServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + grpcServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ApiServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func statusHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ApiServiceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + grpcServiceName + "/Status",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ApiServiceServer).Status(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(ApiServiceServer).Subscribe(m, stream)
}

var apiServiceDesc = grpc.ServiceDesc{
	ServiceName: grpcServiceName,
	HandlerType: (*ApiServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Status", Handler: statusHandler},
		unaryHandler("Query", ApiServiceServer.Query),
		unaryHandler("SendTransaction", ApiServiceServer.SendTransaction),
		unaryHandler("CheckTransaction", ApiServiceServer.CheckTransaction),
		unaryHandler("Events", ApiServiceServer.Events),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "presale/v2/api.proto",
}
