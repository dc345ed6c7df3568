package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/coachlog/coachlog-api/internal/config"
	"github.com/coachlog/coachlog-api/internal/database"
	"github.com/coachlog/coachlog-api/internal/handler"
	"github.com/coachlog/coachlog-api/internal/identity"
	"github.com/coachlog/coachlog-api/internal/queue"
	"github.com/coachlog/coachlog-api/internal/repository"
	"github.com/coachlog/coachlog-api/internal/router"
)

func main() {
	// .env is a developer convenience; in production the variables are set
	// by the environment and the file is simply absent.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}

	users := repository.NewUserRepo(db)
	teams := repository.NewTeamRepo(db)
	members := repository.NewMemberRepo(db)
	activities := repository.NewActivityRepo(db)
	types := repository.NewTypeRepo(db)
	recovery := repository.NewRecoveryRepo(db)

	var mailer queue.Mailer = queue.AMQPMailer{}
	go queue.StartMailConsumer()

	var verifier identity.Verifier
	if cfg.OIDCIssuer != "" && cfg.OIDCClientID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		v, err := identity.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("OIDC provider discovery failed")
		}
		verifier = v
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, recovery, mailer, verifier),
		Users:    handler.NewUserHandler(cfg, users),
		Activity: handler.NewActivityHandler(activities, types, members),
		Team:     handler.NewTeamHandler(teams, members, mailer),
		Member:   handler.NewMemberHandler(teams, members, mailer),
		Type:     handler.NewTypeHandler(types, activities),
	}, cfg.JWTSecret, users, rdb)

	addr := ":" + cfg.Port
	logrus.Infof("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		logrus.Fatal(err)
	}
}
