package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ury-pos/pos-core/internal/errors"
	"github.com/ury-pos/pos-core/internal/service"
)

// CodecName is the gRPC content subtype used by PosCore clients
// (application/grpc+json).
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// PosCoreServer is the server API for the pos.v1.PosCore service.
type PosCoreServer interface {
	ValidateManager(ctx context.Context, req *ValidateManagerRequest) (*ResultResponse, error)
	ProcessVoidItem(ctx context.Context, req *ProcessVoidItemRequest) (*ResultResponse, error)
	GetOrderStatus(ctx context.Context, req *GetOrderStatusRequest) (*GetOrderStatusResponse, error)
}

const posCoreServiceName = "pos.v1.PosCore"

// Full method names.
const (
	MethodValidateManager = "/" + posCoreServiceName + "/ValidateManager"
	MethodProcessVoidItem = "/" + posCoreServiceName + "/ProcessVoidItem"
	MethodGetOrderStatus  = "/" + posCoreServiceName + "/GetOrderStatus"
)

// PosCoreServiceDesc describes pos.v1.PosCore for grpc.Server.RegisterService.
var PosCoreServiceDesc = grpc.ServiceDesc{
	ServiceName: posCoreServiceName,
	HandlerType: (*PosCoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateManager", Handler: validateManagerHandler},
		{MethodName: "ProcessVoidItem", Handler: processVoidItemHandler},
		{MethodName: "GetOrderStatus", Handler: getOrderStatusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/pos_core",
}

// RegisterPosCoreServer registers srv on s.
func RegisterPosCoreServer(s grpc.ServiceRegistrar, srv PosCoreServer) {
	s.RegisterService(&PosCoreServiceDesc, srv)
}

func validateManagerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateManagerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PosCoreServer).ValidateManager(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodValidateManager}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PosCoreServer).ValidateManager(ctx, req.(*ValidateManagerRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func processVoidItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessVoidItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PosCoreServer).ProcessVoidItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodProcessVoidItem}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PosCoreServer).ProcessVoidItem(ctx, req.(*ProcessVoidItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PosCoreServer).GetOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetOrderStatus}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PosCoreServer).GetOrderStatus(ctx, req.(*GetOrderStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCHandler implements the PosCore gRPC interface
type GRPCHandler struct {
	voids  VoidOperations
	orders OrderStatusReader
	logger zerolog.Logger
}

// NewGRPCHandler creates a new gRPC handler
func NewGRPCHandler(voids VoidOperations, orders OrderStatusReader, logger zerolog.Logger) *GRPCHandler {
	return &GRPCHandler{
		voids:  voids,
		orders: orders,
		logger: logger.With().Str("handler", "grpc").Logger(),
	}
}

// ValidateManager checks a manager's credentials and void permission.
// Authorization failures are reported in the response body.
func (h *GRPCHandler) ValidateManager(ctx context.Context, req *ValidateManagerRequest) (*ResultResponse, error) {
	h.logger.Debug().
		Str("username", req.Username).
		Str("pos_profile", req.POSProfile).
		Msg("gRPC ValidateManager called")

	res := h.voids.ValidateManager(ctx, requestContextFrom(ctx), req.toService())
	return resultToResponse(res), nil
}

// ProcessVoidItem records voided lines on a draft invoice.
func (h *GRPCHandler) ProcessVoidItem(ctx context.Context, req *ProcessVoidItemRequest) (*ResultResponse, error) {
	h.logger.Debug().
		Str("invoice_no", req.InvoiceNo).
		Int("items", len(req.Items)).
		Msg("gRPC ProcessVoidItem called")

	res := h.voids.ProcessVoidItem(ctx, requestContextFrom(ctx), req.toService())
	return resultToResponse(res), nil
}

// GetOrderStatus returns kitchen progress. Request level failures are
// reported in the Error field; store outages map to codes.Internal.
func (h *GRPCHandler) GetOrderStatus(ctx context.Context, req *GetOrderStatusRequest) (*GetOrderStatusResponse, error) {
	h.logger.Debug().
		Str("table", req.Table).
		Str("invoice", req.Invoice).
		Msg("gRPC GetOrderStatus called")

	orders, err := h.orders.GetOrderStatus(ctx, requestContextFrom(ctx), req.Table, req.Invoice)
	if err != nil {
		var osErr *service.OrderStatusError
		if stderrors.As(err, &osErr) {
			return &GetOrderStatusResponse{Error: osErr.Message}, nil
		}
		h.logger.Error().Err(err).Msg("Failed to get order status")
		return nil, mapErrorToGRPC(err)
	}

	return &GetOrderStatusResponse{Orders: orderStatusesToResponse(orders)}, nil
}

// UnaryServerInterceptor attaches the request context from incoming
// metadata, logs each call and converts panics to codes.Internal.
func UnaryServerInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		md, _ := metadata.FromIncomingContext(ctx)
		ctx = withRequestContext(ctx, requestContextFromMetadata(md))

		defer func() {
			if p := recover(); p != nil {
				log.Error().Interface("panic", p).Str("method", info.FullMethod).Msg("gRPC handler panicked")
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			log.Info().
				Str("method", info.FullMethod).
				Str("code", status.Code(err).String()).
				Dur("duration", time.Since(start)).
				Msg("gRPC request")
		}()

		return handler(ctx, req)
	}
}

// mapErrorToGRPC maps application errors to gRPC status codes
func mapErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	msg := errorMessage(err)
	switch errors.CodeOf(err) {
	case errors.ErrCodeNotFound:
		return status.Error(codes.NotFound, msg)
	case errors.ErrCodeInvalidInput:
		return status.Error(codes.InvalidArgument, msg)
	case errors.ErrCodeUnauthenticated:
		return status.Error(codes.Unauthenticated, msg)
	case errors.ErrCodeForbidden:
		return status.Error(codes.PermissionDenied, msg)
	case errors.ErrCodeConflict:
		return status.Error(codes.Aborted, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}
