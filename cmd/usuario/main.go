package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/gabinete/internal/db"
	"github.com/gestaozabele/gabinete/internal/usuario"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	// sem JWT: a CLI não emite tokens
	service := usuario.NewService(usuario.NewRepository(pool), nil, "")

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "migrate":
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("falha ao aplicar migrações")
		}
		log.Info().Msg("migrações aplicadas")
	case "criar-admin":
		if err := runCriarAdmin(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	case "listar":
		if err := runListar(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar usuários")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usuario CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  usuario migrate")
	fmt.Fprintln(os.Stderr, "  usuario criar-admin --nome \"Ana Souza\" --email ana@gabinete.gov.br --senha 'Senha@Forte123'")
	fmt.Fprintln(os.Stderr, "  usuario listar")
}

func runCriarAdmin(ctx context.Context, service *usuario.Service, args []string) error {
	fs := flag.NewFlagSet("criar-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome  = fs.String("nome", "", "nome completo")
		email = fs.String("email", "", "email de acesso")
		senha = fs.String("senha", "", "senha inicial (política de senha forte)")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *nome == "" || *email == "" || *senha == "" {
		return errors.New("nome, email e senha são obrigatórios")
	}

	u, err := service.Bootstrap(ctx, usuario.RegisterInput{
		NomeCompleto: *nome,
		Email:        *email,
		Senha:        *senha,
	})
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(u, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runListar(ctx context.Context, service *usuario.Service) error {
	usuarios, err := service.ListAtivos(ctx)
	if err != nil {
		return err
	}

	if len(usuarios) == 0 {
		fmt.Println("nenhum usuário ativo")
		return nil
	}

	encoded, _ := json.MarshalIndent(usuarios, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
