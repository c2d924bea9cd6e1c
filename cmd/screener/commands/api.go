package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/screener/internal/api"
	"github.com/wonny/screener/internal/api/handlers"
	"github.com/wonny/screener/internal/progress"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST + websocket server.

Endpoints:
  GET  /health               - Health check
  GET  /api/results/latest   - Newest top-N JSON
  POST /api/screen           - Start a run (409 while one is active)
  GET  /api/screen/status    - Active or last run
  POST /api/screen/cancel    - Stop the active run
  GET  /ws/progress          - Live progress events

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Equity Screener API Server ===")

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	ctx, stop := signalContext()
	defer stop()

	// 1. Progress hub: 로그 + 웹소켓 동시 전달
	hub := handlers.NewProgressHub(d.log)
	d.orch.WithObserver(progress.Multi{progress.NewLogObserver(d.log), hub})

	// 2. Handlers
	screenHandler := handlers.NewScreenHandler(ctx, d.orch, d.cfg.OutputDir, d.log)
	resultsHandler := handlers.NewResultsHandler(d.cfg.OutputDir, d.log)

	// 3. Router + server
	router := api.NewRouter(screenHandler, resultsHandler, hub, d.log)
	// 진행 중인 실행은 ctx 취소로 중단되고 부분 결과를 기록함
	server := api.New(d.cfg, d.log, router).OnShutdown(screenHandler.Wait)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/results/latest")
	fmt.Println("  POST /api/screen")
	fmt.Println("  GET  /api/screen/status")
	fmt.Println("  POST /api/screen/cancel")
	fmt.Println("  GET  /ws/progress")
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	d.log.Info("Server stopped")
	return nil
}
