package pb

import (
	"context"

	"google.golang.org/grpc"
)

// BlockTransferClient is the client API for the BlockTransfer service,
// hand-written in the shape protoc-gen-go-grpc would emit.
type BlockTransferClient interface {
	PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockReply, error)
	GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockReply, error)
}

type blockTransferClient struct {
	cc *grpc.ClientConn
}

// NewBlockTransferClient wraps an established connection to one replica.
func NewBlockTransferClient(cc *grpc.ClientConn) BlockTransferClient {
	return &blockTransferClient{cc: cc}
}

func (c *blockTransferClient) PutBlock(ctx context.Context, in *PutBlockRequest, opts ...grpc.CallOption) (*PutBlockReply, error) {
	out := new(PutBlockReply)
	if err := c.cc.Invoke(ctx, "/blockmgr.BlockTransfer/PutBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *blockTransferClient) GetBlock(ctx context.Context, in *GetBlockRequest, opts ...grpc.CallOption) (*GetBlockReply, error) {
	out := new(GetBlockReply)
	if err := c.cc.Invoke(ctx, "/blockmgr.BlockTransfer/GetBlock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BlockTransferServer is the server API a storage node implements. The
// node-side storage medium itself is out of scope (spec §1); this
// interface is only the RPC contract the core's client dials against.
type BlockTransferServer interface {
	PutBlock(context.Context, *PutBlockRequest) (*PutBlockReply, error)
	GetBlock(context.Context, *GetBlockRequest) (*GetBlockReply, error)
}

// RegisterBlockTransferServer registers srv's handlers on s.
func RegisterBlockTransferServer(s *grpc.Server, srv BlockTransferServer) {
	s.RegisterService(&blockTransferServiceDesc, srv)
}

func blockTransferPutBlockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PutBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlockTransferServer).PutBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/blockmgr.BlockTransfer/PutBlock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlockTransferServer).PutBlock(ctx, req.(*PutBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func blockTransferGetBlockHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetBlockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BlockTransferServer).GetBlock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/blockmgr.BlockTransfer/GetBlock"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BlockTransferServer).GetBlock(ctx, req.(*GetBlockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var blockTransferServiceDesc = grpc.ServiceDesc{
	ServiceName: "blockmgr.BlockTransfer",
	HandlerType: (*BlockTransferServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PutBlock", Handler: blockTransferPutBlockHandler},
		{MethodName: "GetBlock", Handler: blockTransferGetBlockHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "blockmgr.proto",
}
