package router

import (
	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/internal/container"
	pginfra "github.com/matiasb-dev/authkeep/internal/infrastructure/postgres"
	handlers "github.com/matiasb-dev/authkeep/internal/interface/http"
	"github.com/matiasb-dev/authkeep/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetDB())
	rbacRepo := pginfra.NewRBACRepository(container.GetDB())

	var sessions application.SessionStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = application.NewRedisSessions(rdb)
	}
	tokens := application.NewTokenService(container.GetJWT(), sessions, logger, cfg.SingleSession)
	rbac := application.NewRBACService(rbacRepo, cfg.DefaultGuard)
	auth := &application.AuthService{
		Users:        users,
		Logger:       logger,
		Pub:          container.GetRabbitPub(),
		MailEnabled:  cfg.MailSendEnabled,
		AppName:      cfg.AppName,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
	}

	authHandler := handlers.NewAuthHandler(auth, tokens, logger)
	userHandler := handlers.NewUserHandler(auth, logger)
	roleHandler := handlers.NewRoleHandler(rbac, logger)
	permHandler := handlers.NewPermissionHandler(rbac, logger)

	r.Add(modules.NewAuthModule(authHandler, userHandler, tokens, rbac, container.GetRedis()))
	r.Add(modules.NewRBACModule(roleHandler, permHandler, tokens, rbac))
}
