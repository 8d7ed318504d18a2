package grpc

// proto.go hand-writes the service descriptor for bib.loanengine.v1.LoanEngineService.
// Messages are the application dto types carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/loanengine/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bib.loanengine.v1.LoanEngineService"

// LoanEngineServiceServer is the server API for LoanEngineService.
type LoanEngineServiceServer interface {
	GenerateSchedule(context.Context, *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error)
	EvaluateApplicant(context.Context, *dto.EvaluateApplicantRequest) (*dto.EvaluationResponse, error)
	ApproveLoan(context.Context, *dto.ApproveLoanRequest) (*dto.ApproveLoanResponse, error)
	RecalculateMora(context.Context, *dto.MoraBatchRequest) (*dto.MoraBatchResponse, error)
	mustEmbedUnimplementedLoanEngineServiceServer()
}

// UnimplementedLoanEngineServiceServer provides forward-compatible default implementations.
type UnimplementedLoanEngineServiceServer struct{}

func (UnimplementedLoanEngineServiceServer) GenerateSchedule(context.Context, *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GenerateSchedule not implemented")
}
func (UnimplementedLoanEngineServiceServer) EvaluateApplicant(context.Context, *dto.EvaluateApplicantRequest) (*dto.EvaluationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EvaluateApplicant not implemented")
}
func (UnimplementedLoanEngineServiceServer) ApproveLoan(context.Context, *dto.ApproveLoanRequest) (*dto.ApproveLoanResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApproveLoan not implemented")
}
func (UnimplementedLoanEngineServiceServer) RecalculateMora(context.Context, *dto.MoraBatchRequest) (*dto.MoraBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecalculateMora not implemented")
}
func (UnimplementedLoanEngineServiceServer) mustEmbedUnimplementedLoanEngineServiceServer() {}

// RegisterLoanEngineServiceServer registers srv with the gRPC server.
func RegisterLoanEngineServiceServer(s grpclib.ServiceRegistrar, srv LoanEngineServiceServer) {
	s.RegisterService(&loanEngineServiceDesc, srv)
}

var loanEngineServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LoanEngineServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "GenerateSchedule", Handler: unaryHandler("GenerateSchedule", LoanEngineServiceServer.GenerateSchedule)},
		{MethodName: "EvaluateApplicant", Handler: unaryHandler("EvaluateApplicant", LoanEngineServiceServer.EvaluateApplicant)},
		{MethodName: "ApproveLoan", Handler: unaryHandler("ApproveLoan", LoanEngineServiceServer.ApproveLoan)},
		{MethodName: "RecalculateMora", Handler: unaryHandler("RecalculateMora", LoanEngineServiceServer.RecalculateMora)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler builds the decode/intercept/dispatch shim protoc-gen-go-grpc
// would generate for one method.
func unaryHandler[Req, Resp any](
	method string,
	call func(LoanEngineServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LoanEngineServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LoanEngineServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
