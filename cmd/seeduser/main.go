// cmd/seeduser creates or resets a staff account.
// Usage: go run ./cmd/seeduser -username ops -password secret123 -phone +886900000000
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"b2bportal/internal/config"
	"b2bportal/internal/dto"
	"b2bportal/internal/infra"
	"b2bportal/internal/repository"
	"b2bportal/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	username := flag.String("username", "staff", "login name")
	password := flag.String("password", "", "password (min 8 chars)")
	email := flag.String("email", "", "e-mail address")
	phone := flag.String("phone", "", "mobile number for order SMS")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	auth := service.NewAuthService(
		repository.NewAccountRepository(db),
		repository.NewProfileRepository(db),
		cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	acc, err := auth.UpsertStaff(ctx, dto.RegisterRequest{
		Username: *username,
		Password: *password,
		Email:    *email,
		Phone:    *phone,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("upsert staff account")
	}
	log.Info().Uint("account_id", acc.ID).Str("username", acc.Username).Msg("staff account ready")
}
