package server

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
	"github.com/rs/zerolog"

	"classroom-egress/config"
	"classroom-egress/constant"
	"classroom-egress/handler"
	lk "classroom-egress/pkg/livekit"
	"classroom-egress/pkg/rabbitmq"
	"classroom-egress/pkg/speech"
	"classroom-egress/pkg/storage"
	"classroom-egress/repository"
	"classroom-egress/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Lifecycle events are best-effort; a missing broker disables them but
	// never blocks recording operations.
	var events rabbitmq.Publisher
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("rabbitmq unavailable, lifecycle events disabled")
	} else {
		events = rabbitmq.NewPublisher(conn, cfg.Queue)
	}

	repo, err := repository.NewRepo(cfg.DB)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to open database")
	}

	control := lk.NewClient(cfg.LiveKit, cfg.S3)
	uploader := storage.NewChunkedUploader(cfg.Storage, cfg.S3.Bucket, storage.DefaultPartSize)

	deps := handler.ServiceDependencies{
		Egress:        service.NewEgressService(control, repo, events),
		Audio:         service.NewAudioService(service.NewFFmpegTranscoder(), uploader, events),
		Transcription: service.NewTranscriptionService(speech.NewClient(cfg.OpenAI), cfg.PublicBase),
	}

	r := gin.Default()
	addHealth(r)
	api := r.Group("/api/v1")
	api.POST("/recordings/start", handler.StartRecording(deps))
	api.POST("/recordings/stop", handler.StopRecording(deps))
	api.GET("/recordings/:egressId", handler.RecordingStatus(deps))
	api.POST("/recordings/audio", handler.ExtractAudio(deps))
	api.POST("/transcriptions", handler.Transcribe(deps))

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
