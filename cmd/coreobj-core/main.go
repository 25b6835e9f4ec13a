// Command coreobj-core boots the object-ingestion core standalone
// (spec §1: the HTTP/S3 router is an out-of-scope collaborator, so this
// entrypoint only wires and holds open the core the router would sit in
// front of). Grounded on the teacher's cobra-driven command pattern
// (pkg/process's Bind/Exec convention).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nimbusfs/coreobj/pkg/blockmgr"
	"github.com/nimbusfs/coreobj/pkg/config"
	"github.com/nimbusfs/coreobj/pkg/coreobj"
)

var configFile string

func main() {
	cmd := &cobra.Command{
		Use:   "coreobj-core",
		Short: "object-ingestion core: block replication, CRDT metadata, PUT/GET/DELETE pipelines",
		RunE:  run,
	}
	cmd.Flags().StringVar(&configFile, "config", "", "path to a coreobj config file (optional; env COREOBJ_* and defaults otherwise)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Error("failed to load configuration", zap.Error(err))
		return err
	}

	replicas := blockmgr.StaticReplicaSet{} // TODO: wire a real membership/ring collaborator
	blockClient := blockmgr.NewClient(log, replicas, blockmgr.GRPCDialer{DialTimeout: cfg.BlockRPCTimeout},
		blockmgr.Config{WriteQuorum: cfg.WriteQuorum})

	core, err := coreobj.New(cfg, log, blockClient)
	if err != nil {
		log.Error("failed to initialize core", zap.Error(err))
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			log.Error("failed to close core", zap.Error(err))
		}
	}()

	log.Info("coreobj-core ready",
		zap.String("api_bind_addr", cfg.APIBindAddr),
		zap.Int("block_size", cfg.BlockSize),
		zap.Int("write_quorum", cfg.WriteQuorum),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	log.Info("shutting down")
	return nil
}
