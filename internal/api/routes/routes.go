package routes

import (
	"dashboard-backend/internal/api/handlers"
	"dashboard-backend/internal/api/middleware"
	"dashboard-backend/internal/auth"
	"dashboard-backend/internal/config"
	"dashboard-backend/internal/logger"
	"dashboard-backend/internal/repository"
	"dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Services bundles the constructed service layer so main can reuse it for
// background work like the invitation sweep.
type Services struct {
	User         service.UserServiceInterface
	Organization service.OrganizationServiceInterface
	Team         service.TeamServiceInterface
	Invitation   service.InvitationServiceInterface
	Access       service.AccessServiceInterface
}

// SetupRoutes wires repositories, services and handlers onto a gin engine
func SetupRoutes(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*gin.Engine, *Services) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	validate := validator.New()

	// Notifier: SMTP when configured, log-only otherwise
	var notifier service.Notifier
	if cfg.SMTPHost != "" {
		notifier = service.NewSMTPNotifier(cfg)
	} else {
		notifier = service.NewLogNotifier()
	}

	// Services
	userService := service.NewUserService(userRepo, validate)
	orgService := service.NewOrganizationService(orgRepo, validate)
	teamService := service.NewTeamService(teamRepo, orgRepo, validate)
	accessService := service.NewAccessService(orgRepo, teamRepo)
	invitationService := service.NewInvitationService(
		invitationRepo, teamRepo, userRepo, notifier, validate, cfg.InvitationTTL())
	chatService := service.NewChatService(cfg)

	authService := auth.NewAuthService(cfg, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := auth.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	orgHandler := handlers.NewOrganizationHandler(orgService, accessService)
	teamHandler := handlers.NewTeamHandler(teamService, accessService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, accessService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Health and docs
	router.GET("/health", healthHandler.Health)
	router.GET("/health/live", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		}

		// Public token lookup for the invitation acceptance page
		v1.GET("/invitations/:token", invitationHandler.GetByToken)

		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			users := protected.Group("/users")
			{
				users.PUT("/me", userHandler.UpdateProfile)
				users.GET("/:id", userHandler.Get)
			}

			orgs := protected.Group("/organizations")
			{
				orgs.POST("", orgHandler.Create)
				orgs.GET("", orgHandler.List)
				orgs.GET("/:id", orgHandler.Get)
				orgs.GET("/:id/teams", orgHandler.Teams)
				orgs.GET("/:id/role", orgHandler.Role)
				orgs.PUT("/:id", orgHandler.Update)
				orgs.DELETE("/:id", orgHandler.Delete)
			}

			teams := protected.Group("/teams")
			{
				teams.POST("", teamHandler.Create)
				teams.GET("", teamHandler.List)
				teams.GET("/:id", teamHandler.Get)
				teams.PUT("/:id", teamHandler.Update)
				teams.DELETE("/:id", teamHandler.Delete)
				teams.POST("/:id/members", teamHandler.AddMember)
				teams.PUT("/:id/members/:userId", teamHandler.UpdateMemberRole)
				teams.DELETE("/:id/members/:userId", teamHandler.RemoveMember)
				teams.POST("/:id/permissions", teamHandler.AddPermission)
				teams.DELETE("/:id/permissions", teamHandler.RemovePermission)
			}

			invitations := protected.Group("/invitations")
			{
				invitations.POST("", invitationHandler.Create)
				invitations.GET("", invitationHandler.List)
				invitations.POST("/:token/accept", invitationHandler.Accept)
				invitations.POST("/:token/reject", invitationHandler.Reject)
			}

			protected.POST("/chat", chatHandler.Stream)
		}
	}

	services := &Services{
		User:         userService,
		Organization: orgService,
		Team:         teamService,
		Invitation:   invitationService,
		Access:       accessService,
	}

	return router, services
}
