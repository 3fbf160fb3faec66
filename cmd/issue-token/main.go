// Command issue-token signs an access token for an existing user. Identity
// proofing happens outside this service; operators use it to bootstrap admins
// and to hand tokens to the upstream login flow during development.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/models"
	"github.com/noah-isme/batchplan-api/internal/repository"
	"github.com/noah-isme/batchplan-api/internal/service"
	"github.com/noah-isme/batchplan-api/pkg/config"
	"github.com/noah-isme/batchplan-api/pkg/database"
	"github.com/noah-isme/batchplan-api/pkg/logger"
)

func main() {
	userID := flag.String("user", "", "user id to issue the token for")
	email := flag.String("email", "", "email of the user (alternative to -user)")
	flag.Parse()

	if (*userID == "") == (*email == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -user or -email is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	users := repository.NewUserRepository(db)
	var user *models.User
	if *userID != "" {
		user, err = users.FindByID(ctx, *userID)
	} else {
		user, err = users.FindByEmail(ctx, *email)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logr.Fatal("user not found", zap.String("user", *userID), zap.String("email", *email))
		}
		logr.Fatal("failed to load user", zap.Error(err))
	}

	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	}, logr)
	token, expiresAt, err := tokens.Issue(*user)
	if err != nil {
		logr.Fatal("failed to issue token", zap.Error(err))
	}

	logr.Info("token issued",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Time("expires_at", expiresAt),
	)
	fmt.Println(token)
}
