package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // nolint: gosec // securely exposed on separate, optional port
	"time"

	apiV2 "github.com/MinterTeam/minter-presale/api/v2"
	serviceApi "github.com/MinterTeam/minter-presale/api/v2/service"
	"github.com/MinterTeam/minter-presale/cmd/utils"
	"github.com/MinterTeam/minter-presale/core/appdb"
	"github.com/MinterTeam/minter-presale/core/presale"
	"github.com/MinterTeam/minter-presale/core/statistics"
	"github.com/MinterTeam/minter-presale/log"
	"github.com/MinterTeam/minter-presale/version"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	tmLog "github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// RunNode is the command that allows the CLI to start a node.
var RunNode = &cobra.Command{
	Use:   "node",
	Short: "Run the Presale node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runNode(cmd)
	},
}

func init() {
	RunNode.Flags().Bool("pprof", false, "enable pprof")
	RunNode.Flags().String("pprof-addr", "0.0.0.0:6060", "pprof listen addr")
}

func runNode(cmd *cobra.Command) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}
	log.SetLogger(logger)

	// check open files limits
	if err := checkRlimits(); err != nil {
		return err
	}

	pprofOn, err := cmd.Flags().GetBool("pprof")
	if err != nil {
		return err
	}

	if pprofOn {
		if err := enablePprof(cmd, logger); err != nil {
			return err
		}
	}

	app, err := openBlockchain(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Stop(); err != nil {
			logger.Error("Failed to stop", "err", err)
		}
	}()

	if !app.IsInitialized() {
		genesis, err := presale.LoadGenesis(cfg.GenesisFile())
		if err != nil {
			return err
		}
		if err := app.InitChain(genesis, uint64(time.Now().Unix())); err != nil {
			return err
		}
	}

	group, ctx := errgroup.WithContext(cmd.Context())

	if cfg.Instrumentation.Prometheus {
		app.SetStatisticData(statistics.New(statistics.PrometheusMetrics(cfg.Instrumentation.Namespace)))
		group.Go(func() error {
			return runMetrics(ctx, cfg.Instrumentation.PrometheusListenAddr, logger.With("module", "metrics"))
		})
	}

	srv := serviceApi.NewService(app, cfg, version.Version, logger.With("module", "api"))
	group.Go(func() error {
		return apiV2.Run(ctx, srv, cfg.GRPCListenAddress, cfg.APIListenAddress, cfg.APISimultaneousRequests, logger.With("module", "api"))
	})

	logger.Info("Started node", "version", version.Version, "height", app.Height())

	return group.Wait()
}

// openBlockchain opens the databases in the presale home and loads the last committed state
func openBlockchain(logger tmLog.Logger) (*presale.Blockchain, error) {
	storages := utils.NewStorage(utils.GetPresaleHome(), utils.GetPresaleConfigPath())

	if _, err := storages.InitStateLevelDB("state", utils.GetDbOpts(cfg.StateMemAvailable)); err != nil {
		return nil, errors.Wrap(err, "open state db")
	}

	if _, err := storages.InitEventLevelDB("events", utils.GetDbOpts(1024)); err != nil {
		_ = storages.Close()
		return nil, errors.Wrap(err, "open events db")
	}

	appDB, err := appdb.NewAppDB(cfg.DBDir(), cfg.DBBackend)
	if err != nil {
		_ = storages.Close()
		return nil, errors.Wrap(err, "open app db")
	}

	app, err := presale.NewBlockchain(storages, appDB, cfg, logger)
	if err != nil {
		_ = appDB.Close()
		_ = storages.Close()
		return nil, err
	}

	return app, nil
}

func runMetrics(ctx context.Context, addr string, logger tmLog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting metrics server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func enablePprof(cmd *cobra.Command, logger tmLog.Logger) error {
	pprofAddr, err := cmd.Flags().GetString("pprof-addr")
	if err != nil {
		return err
	}

	pprofMux := http.DefaultServeMux
	http.DefaultServeMux = http.NewServeMux()
	go func() {
		logger.Error((&http.Server{
			Addr:              pprofAddr,
			Handler:           pprofMux,
			ReadHeaderTimeout: 10 * time.Second,
		}).ListenAndServe().Error())
	}()
	return nil
}

func checkRlimits() error {
	const RequiredOpenFilesLimit = 10000

	var rLimit unix.Rlimit
	err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		return err
	}

	required := RequiredOpenFilesLimit + uint64(cfg.StateMemAvailable)
	if rLimit.Cur < required {
		rLimit.Cur = required
		err = unix.Setrlimit(unix.RLIMIT_NOFILE, &rLimit)
		if err != nil {
			return fmt.Errorf("cannot set RLIMIT_NOFILE to %d", rLimit.Cur)
		}
	}

	return nil
}
