package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/matiasb-dev/authkeep/internal/application"
	handlers "github.com/matiasb-dev/authkeep/internal/interface/http"
	"github.com/matiasb-dev/authkeep/internal/interface/middleware"
)

// AuthModule mounts account and session routes.
// Public: POST /api/auth/register, POST /api/auth/login, POST /api/auth/refresh
// Protected: GET /api/auth/me, POST /api/auth/logout, POST /api/auth/me/avatar.
// GET /api/user/search additionally requires a management role.
type AuthModule struct {
	Auth   *handlers.AuthHandler
	Users  *handlers.UserHandler
	Tokens *application.TokenService
	RBAC   *application.RBACService
	Redis  *redis.Client
}

func NewAuthModule(auth *handlers.AuthHandler, users *handlers.UserHandler, tokens *application.TokenService, rbac *application.RBACService, rdb *redis.Client) *AuthModule {
	return &AuthModule{Auth: auth, Users: users, Tokens: tokens, RBAC: rbac, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath())
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP())

	pub := rg.Group("/auth")
	pub.POST("/register", registerLimiter, m.Auth.Register)
	pub.POST("/login", loginLimiter, m.Auth.Login)
	pub.POST("/refresh", refreshLimiter, m.Auth.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/auth/me", m.Auth.Me)
		auth.POST("/auth/logout", m.Auth.Logout)
		auth.POST("/auth/me/avatar", m.Auth.UploadAvatar)
		auth.GET("/user/search", middleware.RequireRoles(m.RBAC, RoleManager, RoleSuperadmin), m.Users.Search)
	}
}
