package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vscraper/vscraper-go/api"
	"github.com/vscraper/vscraper-go/internal/app"
	"github.com/vscraper/vscraper-go/internal/domain"
	"github.com/vscraper/vscraper-go/internal/events"
	"github.com/vscraper/vscraper-go/internal/infrastructure"
	"github.com/vscraper/vscraper-go/pkg/logger"
)

var (
	serverMode = flag.Bool("server-mode", false, "Internal flag: run in server mode (called by daemon)")
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// If not in server mode, run as daemon
	if !*serverMode {
		startAsDaemon()
		return
	}

	runServer()
}

// startAsDaemon forks the current process and runs the server in background
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	args := []string{"-server-mode"}
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()

	// Detach from parent process
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open /dev/null: %v\n", err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
	os.Exit(0)
}

func runServer() {
	// The config store never fails: load errors fall back to defaults.
	bootstrapLog := logger.NewDefault()
	store := app.NewConfigStore(*configPath, bootstrapLog)
	config := store.Get()

	if err := createDirectories(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Initialize multi-logger (general console + job/error files)
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		Format:  config.Logging.Format,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer multiLog.Close()

	logAdapter := logger.NewLoggerAdapter(multiLog)
	log := logAdapter.GetSingleLogger()

	log.Info("Starting vscraper server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port))

	// Initialize repository
	repo, err := infrastructure.NewSQLiteJobRepository(config.Download.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}

	// Settle jobs orphaned by a previous crash so their URLs free up
	if err := repo.FailActive("server restarted before job finished"); err != nil {
		log.Warn("Failed to settle orphaned jobs", zap.Error(err))
	}

	// Event bus and its local observers
	emitter := events.NewEmitter()

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	notifierSub := notifier.Watch(emitter)
	defer notifierSub.Close()

	// Core components
	runner := infrastructure.NewExecProcessRunner(log)
	fetcher := infrastructure.NewReleaseToolFetcher(log)

	installer := app.NewInstaller(fetcher, runner, store, emitter, log)
	jobMgr := app.NewJobManager(repo, runner, store, emitter, multiLog)

	// Setup HTTP router
	router := api.SetupRouter(jobMgr, installer, store, emitter, logAdapter)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight jobs settle their terminal events
	done := make(chan struct{})
	go func() {
		jobMgr.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout, killing active downloads")
		jobMgr.Shutdown()
	}

	log.Info("Server stopped")
}

// createDirectories ensures the working directories exist
func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.BaseDir,
		config.Download.LogsDir,
		config.Tools.BinDir,
		filepath.Dir(config.Download.DatabasePath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
