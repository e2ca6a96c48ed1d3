package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	intconfig "voyage/internal/config"
	intdb "voyage/internal/db"
	api "voyage/internal/http"
	"voyage/internal/utils"
)

var (
	serveAddr    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <service>",
	Short: "Run one HTTP service",
	Long: `Run one service until SIGINT or SIGTERM.

Examples:
  voyage serve user
  voyage serve trip --addr :9009 --migrate`,
	Args: serviceArg,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default APP_ADDR or the service port)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "create missing tables before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	env := intconfig.LoadEnv(args[0])
	if serveAddr != "" {
		env.AppAddr = serveAddr
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, flush := utils.InitLogger(env.Service, env.LogLevel, env.IsProduction())
	defer flush()

	db, err := intconfig.ConnectDB(env.DBDSN)
	if err != nil {
		return err
	}
	defer intconfig.CloseDB()

	if serveMigrate {
		if err := intdb.Migrate(cmd.Context(), db, env.Service); err != nil {
			return err
		}
	}

	deps := api.Deps{Logger: logger, DB: db}
	if env.Service == intconfig.ServiceTrip {
		rdb, err := intconfig.ConnectRedis(env)
		if err != nil {
			return err
		}
		if rdb != nil {
			defer rdb.Close()
			deps.Redis = rdb
		} else {
			logger.Info("REDIS_ADDR empty, share codes stored in MySQL")
		}
	}

	r, err := api.NewRouter(env, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
