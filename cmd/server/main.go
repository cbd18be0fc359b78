package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/dmashiku07/starlink-tracker/internal/api"
	"github.com/dmashiku07/starlink-tracker/internal/config"
	"github.com/dmashiku07/starlink-tracker/internal/database"
	"github.com/dmashiku07/starlink-tracker/internal/handler"
	"github.com/dmashiku07/starlink-tracker/internal/logging"
	"github.com/dmashiku07/starlink-tracker/internal/middleware"
	"github.com/dmashiku07/starlink-tracker/internal/models"
	"github.com/dmashiku07/starlink-tracker/internal/repository"
	"github.com/dmashiku07/starlink-tracker/internal/service"
)

var (
	port     string
	dbPath   string
	deviceID string
)

var rootCmd = &cobra.Command{
	Use:   "starlink-tracker",
	Short: "Ingest tracker location reports and serve the traveled track",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored trajectory as JSON",
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "listen address (overrides PORT)")
	historyCmd.Flags().StringVar(&deviceID, "device", "", "only include samples of this device")

	rootCmd.AddCommand(serveCmd, migrateCmd, historyCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig 加载配置
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if port != "" {
		cfg.Port = port
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	return cfg, nil
}

func openStore(cfg *config.Config) (*repository.TrackRepository, func(), error) {
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, nil, err
	}
	if _, err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repository.NewTrackRepository(db), func() { db.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, closeDB, err := openStore(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	defer closeDB()

	log := logging.WithComponent("server")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	go limiter.StartCleanup(ctx, cfg.RateWindow)

	gin.SetMode(cfg.GinMode)
	trackHandler := handler.NewTrackHandler(service.NewTrackService(repo))
	router := api.SetupRouter(trackHandler, limiter)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := database.Migrate(db)
	if err != nil {
		return err
	}

	logging.Info().Int("applied", applied).Msg("Migrations complete")
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	svc := service.NewTrackService(repo)
	history := svc.History
	if cmd.Flags().Changed("device") {
		history = func(ctx context.Context) (*models.Trajectory, error) {
			return svc.DeviceHistory(ctx, deviceID)
		}
	}

	traj, err := history(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(traj); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
