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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/alerta"
	"github.com/gestaozabele/gabinete/internal/auth"
	"github.com/gestaozabele/gabinete/internal/cidadao"
	"github.com/gestaozabele/gabinete/internal/comentario"
	"github.com/gestaozabele/gabinete/internal/compartilhamento"
	"github.com/gestaozabele/gabinete/internal/config"
	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/demanda"
	internalhttp "github.com/gestaozabele/gabinete/internal/http"
	"github.com/gestaozabele/gabinete/internal/passkey"
	"github.com/gestaozabele/gabinete/internal/status"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	usuarioService := usuario.NewService(usuario.NewRepository(pool), jwtManager, cfg.SenhaPadraoReset)
	cidadaoService := cidadao.NewService(cidadao.NewRepository(pool))
	statusService := status.NewService(status.NewRepository(pool), redisClient, cfg.StatusCacheTTL)
	comentarioService := comentario.NewService(comentario.NewRepository(pool))

	demandaRepo := demanda.NewRepository(pool)
	var notifier alerta.Notifier
	if slack := alerta.NewSlackNotifier(cfg.SlackWebhookURL); slack != nil {
		notifier = slack
	} else {
		log.Info().Msg("SLACK_WEBHOOK_URL ausente; alertas de demanda urgente desativados")
	}
	demandaService := demanda.NewService(demandaRepo, cidadaoService, statusService, notifier)

	compartilhamentoService := compartilhamento.NewService(
		compartilhamento.NewRepository(pool), demandaRepo, comentarioService, cfg.PublicViewURL,
	)

	passkeyService, err := passkey.NewService(passkey.Config{
		RPID:     cfg.WebAuthnRPID,
		RPOrigin: cfg.WebAuthnRPOrigin,
		RPName:   cfg.WebAuthnRPName,
	}, passkey.NewRepository(pool), passkey.NewSessionStore(redisClient), usuarioService)
	if err != nil {
		return fmt.Errorf("webauthn: %w", err)
	}

	handler := internalhttp.NewRouter(cfg, internalhttp.Deps{
		Pool:             pool,
		Redis:            redisClient,
		Usuarios:         usuarioService,
		Cidadaos:         cidadaoService,
		Status:           statusService,
		Demandas:         demandaService,
		Comentarios:      comentarioService,
		Compartilhamento: compartilhamentoService,
		Passkeys:         passkeyService,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
