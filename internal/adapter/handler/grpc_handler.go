package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/product-inventory/internal/core/domain"
	"github.com/rl1809/product-inventory/internal/core/service"
	"github.com/rl1809/product-inventory/internal/port"
)

const (
	msgColorNotFound      = "Color not found"
	msgInvalidCredentials = "Invalid credentials"
	msgUploadFailed       = "Image upload failed"
	msgEnoughQuantity     = "Enough quantity"
	msgNotEnoughQuantity  = "Not enough quantity"
	msgInvalidQuantity    = "Invalid quantity"
	msgReleaseSuccessful  = "Release successful"
	msgReleaseFailed      = "Release failed"
)

type GRPCHandler struct {
	reservations *service.ReservationService
	auth         port.Authenticator
	assets       port.AssetStore
	logger       *zap.Logger
}

func NewGRPCHandler(reservations *service.ReservationService, auth port.Authenticator, assets port.AssetStore, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{
		reservations: reservations,
		auth:         auth,
		assets:       assets,
		logger:       logger.Named("grpc"),
	}
}

func (h *GRPCHandler) ListColors(ctx context.Context, _ *ListColorsRequest) (*ColorsResponse, error) {
	items, err := h.reservations.ListItems(ctx)
	if err != nil {
		return nil, h.statusError("list colors", err)
	}
	return &ColorsResponse{Success: true, Data: items}, nil
}

func (h *GRPCHandler) GetColor(ctx context.Context, req *GetColorRequest) (*ColorResponse, error) {
	item, err := h.reservations.GetItem(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &ColorResponse{Success: false, Message: msgColorNotFound}, nil
		}
		return nil, h.statusError("get color", err)
	}
	return &ColorResponse{Success: true, Data: &item}, nil
}

func (h *GRPCHandler) CreateColor(ctx context.Context, req *CreateColorRequest) (*ColorResponse, error) {
	in := domain.NewItem{
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if err := in.Validate(); err != nil {
		return &ColorResponse{Success: false, Message: err.Error()}, nil
	}
	if len(req.File) == 0 {
		return &ColorResponse{Success: false, Message: "invalid argument: image file is required"}, nil
	}

	auth, err := h.auth.Validate(ctx, req.Token)
	if err != nil {
		h.logger.Error("auth service call failed", zap.Error(err))
		return nil, status.Error(codes.Unavailable, "auth service unavailable")
	}
	if !auth.Success {
		return &ColorResponse{Success: false, Message: msgInvalidCredentials}, nil
	}

	url, err := h.assets.Upload(ctx, req.File, req.Filename)
	if err != nil {
		h.logger.Warn("image upload failed", zap.String("filename", req.Filename), zap.Error(err))
		return &ColorResponse{Success: false, Message: msgUploadFailed}, nil
	}
	in.PictureURL = url

	item, err := h.reservations.CreateItem(ctx, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return &ColorResponse{Success: false, Message: err.Error()}, nil
		}
		return nil, h.statusError("create color", err)
	}
	return &ColorResponse{Success: true, Data: &item}, nil
}

func (h *GRPCHandler) ReserveColor(ctx context.Context, req *QuantityRequest) (*MessageResponse, error) {
	err := h.reservations.Reserve(ctx, req.ColorID, req.Quantity)
	switch {
	case err == nil:
		return &MessageResponse{Success: true, Data: msgEnoughQuantity}, nil
	case errors.Is(err, domain.ErrInvalidArgument):
		return &MessageResponse{Success: false, Message: msgInvalidQuantity}, nil
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return &MessageResponse{Success: false, Message: msgNotEnoughQuantity}, nil
	default:
		return nil, h.statusError("reserve color", err)
	}
}

func (h *GRPCHandler) ReleaseColor(ctx context.Context, req *QuantityRequest) (*MessageResponse, error) {
	err := h.reservations.Release(ctx, req.ColorID, req.Quantity)
	switch {
	case err == nil:
		return &MessageResponse{Success: true, Data: msgReleaseSuccessful}, nil
	case errors.Is(err, domain.ErrInvalidArgument):
		return &MessageResponse{Success: false, Message: msgInvalidQuantity}, nil
	case errors.Is(err, domain.ErrNotFound):
		return &MessageResponse{Success: false, Message: msgReleaseFailed}, nil
	default:
		return nil, h.statusError("release color", err)
	}
}

func (h *GRPCHandler) statusError(op string, err error) error {
	h.logger.Error(op+" failed", zap.Error(err))

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, "storage unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.OK {
			logger.Debug("grpc call", fields...)
		} else {
			logger.Warn("grpc call", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
