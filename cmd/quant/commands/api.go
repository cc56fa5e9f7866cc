package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-factor/internal/api"
	"github.com/wonny/aegis-factor/internal/api/handlers"
	"github.com/wonny/aegis-factor/internal/brain"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `파이프라인을 한 번 실행한 뒤 결과를 읽기 전용 REST API 로 제공합니다.

Endpoints:
  GET  /health                  - Health check
  GET  /api/report                  - 성과 리포트
  GET  /api/returns                 - 일간 수익률 + 보유 종목 수
  GET  /api/selections              - 리밸런싱 날짜 목록
  GET  /api/selections/{date}       - 날짜별 선정 종목

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default is PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newPipeline(ctx, pipelineOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	if apiPort != "" {
		env.cfg.Port = apiPort
	}

	result, err := env.orch.Run(ctx, brain.RunConfig{})
	if err != nil {
		return fmt.Errorf("initial run: %w", err)
	}

	holder := &handlers.ResultHolder{}
	holder.Set(result)

	router := api.NewRouter(handlers.NewResultsHandler(holder, env.log), nil, env.log)
	server := api.New(env.cfg, env.log, router)

	PrintSuccess(fmt.Sprintf("Serving run %s on :%s (Ctrl+C to stop)", result.RunID, env.cfg.Port))
	return server.Run(ctx)
}
