package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/product-inventory/internal/core/domain"
)

const colorServiceName = "product.v1.ColorService"

type ListColorsRequest struct{}

type GetColorRequest struct {
	ID string `json:"id"`
}

type CreateColorRequest struct {
	Token       string `json:"token"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	File        []byte `json:"file"`
	Filename    string `json:"filename"`
}

type QuantityRequest struct {
	ColorID  string `json:"colorId"`
	Quantity int64  `json:"quantity"`
}

type ColorsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    []domain.Item `json:"data"`
}

type ColorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    *domain.Item `json:"data,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    string `json:"data,omitempty"`
}

type ColorServiceServer interface {
	ListColors(context.Context, *ListColorsRequest) (*ColorsResponse, error)
	GetColor(context.Context, *GetColorRequest) (*ColorResponse, error)
	CreateColor(context.Context, *CreateColorRequest) (*ColorResponse, error)
	ReserveColor(context.Context, *QuantityRequest) (*MessageResponse, error)
	ReleaseColor(context.Context, *QuantityRequest) (*MessageResponse, error)
}

var colorServiceDesc = grpc.ServiceDesc{
	ServiceName: colorServiceName,
	HandlerType: (*ColorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListColors", Handler: unaryHandler("ListColors", ColorServiceServer.ListColors)},
		{MethodName: "GetColor", Handler: unaryHandler("GetColor", ColorServiceServer.GetColor)},
		{MethodName: "CreateColor", Handler: unaryHandler("CreateColor", ColorServiceServer.CreateColor)},
		{MethodName: "ReserveColor", Handler: unaryHandler("ReserveColor", ColorServiceServer.ReserveColor)},
		{MethodName: "ReleaseColor", Handler: unaryHandler("ReleaseColor", ColorServiceServer.ReleaseColor)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "product/v1/color_service",
}

func RegisterColorServiceServer(s grpc.ServiceRegistrar, srv ColorServiceServer) {
	s.RegisterService(&colorServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(ColorServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + colorServiceName + "/" + method

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ColorServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ColorServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type ColorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewColorServiceClient(cc grpc.ClientConnInterface) *ColorServiceClient {
	return &ColorServiceClient{cc: cc}
}

func (c *ColorServiceClient) ListColors(ctx context.Context, in *ListColorsRequest, opts ...grpc.CallOption) (*ColorsResponse, error) {
	out := new(ColorsResponse)
	return out, c.invoke(ctx, "ListColors", in, out, opts)
}

func (c *ColorServiceClient) GetColor(ctx context.Context, in *GetColorRequest, opts ...grpc.CallOption) (*ColorResponse, error) {
	out := new(ColorResponse)
	return out, c.invoke(ctx, "GetColor", in, out, opts)
}

func (c *ColorServiceClient) CreateColor(ctx context.Context, in *CreateColorRequest, opts ...grpc.CallOption) (*ColorResponse, error) {
	out := new(ColorResponse)
	return out, c.invoke(ctx, "CreateColor", in, out, opts)
}

func (c *ColorServiceClient) ReserveColor(ctx context.Context, in *QuantityRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	out := new(MessageResponse)
	return out, c.invoke(ctx, "ReserveColor", in, out, opts)
}

func (c *ColorServiceClient) ReleaseColor(ctx context.Context, in *QuantityRequest, opts ...grpc.CallOption) (*MessageResponse, error) {
	out := new(MessageResponse)
	return out, c.invoke(ctx, "ReleaseColor", in, out, opts)
}

func (c *ColorServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+colorServiceName+"/"+method, in, out, opts...)
}
