// Command renderd runs the render daemon: an HTTP API for submitting and
// watching render jobs, an optional Kafka consumer for queued requests and a
// cron schedule for unattended daily renders.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wisdombot/api"
	"wisdombot/config"
	"wisdombot/kafka"
	"wisdombot/logx"
	"wisdombot/pipeline"
	"wisdombot/state"
	"wisdombot/types"
	"wisdombot/workflow"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "HTTP listen address (overrides RENDERD_ADDR)")
	cronSpec := flag.String("cron", "", `render schedule (overrides RENDER_CRON, "off" disables)`)
	cronUpload := flag.Bool("cron-upload", true, "upload scheduled renders to YouTube")
	noKafka := flag.Bool("no-kafka", false, "disable the Kafka request consumer")
	flag.Parse()

	logx.Configure(logx.Config{Service: "renderd"})
	log := logx.WithComponent("main")

	cfg := config.Load()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *cronSpec != "" {
		cfg.CronSpec = *cronSpec
	}

	ctx := context.Background()

	manager := state.NewManager()
	app, err := pipeline.Build(ctx, cfg, manager.SetState)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline assembly failed")
	}
	defer app.Close()

	runner := workflow.NewRunner(manager, app.Generator)
	server := api.NewServer(manager, runner, app.Progress, cfg.ListenAddr)

	var consumer *kafka.Consumer
	if !*noKafka {
		consumer, err = kafka.NewRenderConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID,
			func(ctx context.Context, req *types.RenderRequest) error {
				_, err := runner.Render(ctx, req)
				return err
			})
		if err != nil {
			log.Warn().Err(err).Msg("kafka consumer unavailable, continuing without queue")
			consumer = nil
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("kafka consumer failed to start, continuing without queue")
			consumer = nil
		}
	}

	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("http server failed to start")
	}

	if cfg.CronSpec != "" && cfg.CronSpec != "off" {
		if err := server.StartCron(cfg.CronSpec, *cronUpload); err != nil {
			log.Fatal().Err(err).Msg("cron schedule rejected")
		}
	}

	log.Info().
		Str("addr", cfg.ListenAddr).
		Str("cron", cfg.CronSpec).
		Bool("kafka", consumer != nil).
		Str("topic", cfg.KafkaTopic).
		Msg("renderd up")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error().Err(err).Msg("kafka consumer close error")
		}
	}
	log.Info().Msg("renderd stopped")
}
