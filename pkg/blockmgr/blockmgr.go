// Package blockmgr is the client-side block manager (spec §4.3):
// put_block/get_block against a replica set, over grpc with the shared
// msgpack codec (pkg/blockmgr/pb). Replica selection (the cluster
// membership/ring) and the storage medium itself are out-of-scope
// collaborators (spec §1); this package only consumes their contract.
package blockmgr

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/nimbusfs/coreobj/pkg/apperr"
	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/blockmgr/pb"
)

// BlockManager is the contract the PUT/GET pipelines consume.
type BlockManager interface {
	// PutBlock ships data to the replica set for hash and returns once
	// the write quorum has acknowledged. Idempotent: repeating with an
	// identical (hash, data) is a no-op at replicas.
	PutBlock(ctx context.Context, hash blockhash.Hash, data []byte) error
	// GetBlock fetches bytes such that blockhash.Sum(bytes) == hash. In
	// Client, every failure, including no replica holding it, is a
	// BlockUnavailable-kind error wrapping the last cause.
	GetBlock(ctx context.Context, hash blockhash.Hash) ([]byte, error)
}

// ReplicaSet resolves which node addresses currently hold replicas of a
// block. The ring that computes this is out of scope (spec §1); the
// core only needs this narrow query contract.
type ReplicaSet interface {
	Replicas(hash blockhash.Hash) []string
}

// StaticReplicaSet is a fixed-address ReplicaSet, useful standalone or
// in tests, before a real membership collaborator is wired in.
type StaticReplicaSet []string

// Replicas returns the fixed address list regardless of hash.
func (s StaticReplicaSet) Replicas(blockhash.Hash) []string {
	return s
}

// Dialer establishes a client connection to a replica address. Grounded
// on the teacher's transport pattern of wrapping a *grpc.ClientConn per
// node (pkg/transport, pkg/storage/ec's ecClient).
type Dialer interface {
	Dial(ctx context.Context, addr string) (client pb.BlockTransferClient, closeFn func() error, err error)
}

// GRPCDialer dials replicas over plain grpc using the shared msgpack
// codec instead of protobuf.
type GRPCDialer struct {
	DialTimeout time.Duration
}

// Dial opens a connection to addr.
func (d GRPCDialer) Dial(ctx context.Context, addr string) (pb.BlockTransferClient, func() error, error) {
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cc, err := grpc.DialContext(dialCtx, addr,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(pb.CodecName)),
	)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindTransport, err)
	}
	return pb.NewBlockTransferClient(cc), cc.Close, nil
}

// Config tunes the client's quorum behavior (spec §6 "replication_factor,
// quorum parameters: block-manager concern, not core" — Config is the
// core's own small slice of that: how many replicas it waits for).
type Config struct {
	// WriteQuorum is the number of replica acks put_block waits for
	// before considering a write durable. Zero means "all replicas".
	WriteQuorum int
}

// Client is the grpc-backed BlockManager implementation.
type Client struct {
	log      *zap.Logger
	replicas ReplicaSet
	dialer   Dialer
	config   Config
}

// NewClient builds a Client dialing through dialer against replicas.
func NewClient(log *zap.Logger, replicas ReplicaSet, dialer Dialer, config Config) *Client {
	return &Client{log: log, replicas: replicas, dialer: dialer, config: config}
}

// PutBlock fans out to every replica concurrently and waits for quorum
// acks, exactly the "write quorum" contract of spec §4.3.
func (c *Client) PutBlock(ctx context.Context, hash blockhash.Hash, data []byte) error {
	addrs := c.replicas.Replicas(hash)
	if len(addrs) == 0 {
		return apperr.New(apperr.KindQuorumUnavailable, "put_block %s: no replicas available", hash)
	}
	quorum := c.config.WriteQuorum
	if quorum <= 0 || quorum > len(addrs) {
		quorum = len(addrs)
	}

	acks := make(chan struct{}, len(addrs))
	var group errgroup.Group
	for _, addr := range addrs {
		addr := addr
		group.Go(func() error {
			client, closeConn, err := c.dialer.Dial(ctx, addr)
			if err != nil {
				c.log.Debug("put_block dial failed", zap.String("addr", addr), zap.Error(err))
				return nil
			}
			defer func() { _ = closeConn() }()

			_, err = client.PutBlock(ctx, &pb.PutBlockRequest{Hash: hash.Bytes(), Data: data})
			if err != nil {
				c.log.Debug("put_block rpc failed", zap.String("addr", addr), zap.Error(err))
				return nil
			}
			acks <- struct{}{}
			return nil
		})
	}
	_ = group.Wait()
	close(acks)

	acked := 0
	for range acks {
		acked++
	}
	if acked < quorum {
		return apperr.New(apperr.KindQuorumUnavailable,
			"put_block %s: %d/%d replicas acked, need %d", hash, acked, len(addrs), quorum)
	}
	return nil
}

// GetBlock tries replicas in order until one returns bytes that digest
// to hash (spec §8: "digest(get_block(h)) == h").
func (c *Client) GetBlock(ctx context.Context, hash blockhash.Hash) ([]byte, error) {
	addrs := c.replicas.Replicas(hash)
	var lastErr error
	for _, addr := range addrs {
		client, closeConn, err := c.dialer.Dial(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		reply, err := client.GetBlock(ctx, &pb.GetBlockRequest{Hash: hash.Bytes()})
		_ = closeConn()
		if err != nil {
			lastErr = err
			continue
		}
		if !blockhash.Verify(hash, reply.Data) {
			lastErr = apperr.New(apperr.KindInternal, "replica %s returned data not matching hash %s", addr, hash)
			continue
		}
		return reply.Data, nil
	}
	if lastErr == nil {
		lastErr = apperr.New(apperr.KindNotFound, "block %s: no replicas available", hash)
	}
	return nil, apperr.Wrap(apperr.KindBlockUnavailable, lastErr)
}
