package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/auth"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/bookshelf"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/documents"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/exports"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/groups"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/jobs"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/payouts"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/staff"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/upstream"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/cache"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

type AppHandlers struct {
	Auth      *auth.AuthHandlers
	Documents *documents.DocumentsHandlers
	Exports   *exports.ExportsHandlers
	Groups    *groups.GroupsHandlers
	Bookshelf *bookshelf.BookshelfHandlers
	Payouts   *payouts.PayoutsHandlers
	Staff     *staff.StaffHandlers

	SessionAuth *middleware.SessionAuth
}

func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) {
	handlers := setupDependencies(cfg, dbPool, log)
	setupRouter(r, handlers)
}

func setupDependencies(cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) *AppHandlers {
	baseHandler := domain.NewBaseHandler(log)

	client := upstream.NewClient(cfg.Upstream, log)
	sessionRepo := session.NewPostgresRepo(dbPool, log)
	userCache := cache.NewUserCache(cfg.Session.UserTTL, log)

	authService := auth.NewAuthService(client, sessionRepo, cfg.Session, log)

	pollOpts := jobs.Options{
		Interval:    cfg.Poller.Interval,
		MaxAttempts: cfg.Poller.MaxAttempts,
		Logger:      log,
	}

	documentsService := documents.NewService(client, nil, pollOpts, log)
	exportsService := exports.NewService(client, pollOpts, log)
	groupsService := groups.NewService(client, log)
	staffService := staff.NewService(client, log)

	// No Stripe key leaves the provider nil and payouts disabled.
	var provider payouts.PaymentProvider
	if cfg.Stripe.SecretKey != "" {
		provider = payouts.NewStripeProvider(cfg.Stripe.SecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payouts disabled")
	}
	payoutsService := payouts.NewService(provider, cfg.Stripe, log)

	return &AppHandlers{
		Auth:        auth.NewAuthHandlers(authService, baseHandler),
		Documents:   documents.NewDocumentsHandlers(documentsService, baseHandler),
		Exports:     exports.NewExportsHandlers(exportsService, baseHandler),
		Groups:      groups.NewGroupsHandlers(groupsService, baseHandler),
		Bookshelf:   bookshelf.NewBookshelfHandlers(client, baseHandler),
		Payouts:     payouts.NewPayoutsHandlers(payoutsService, baseHandler),
		Staff:       staff.NewStaffHandlers(staffService, baseHandler),
		SessionAuth: middleware.NewSessionAuth(authService, sessionRepo, userCache, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers) {
	r.Use(h.SessionAuth.Handler())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", h.Auth.Me)
	}

	protected := r.Group("", middleware.RequireUser())
	{
		protected.GET("/documents", h.Documents.ListDocuments)
		protected.POST("/documents", h.Documents.PublishDocument)
		protected.POST("/documents/preflight", h.Documents.PreflightDocument)
		protected.POST("/epub-uploads", h.Documents.UploadEpub)

		protected.POST("/export", h.Exports.RequestExport)

		protected.GET("/bookshelf", h.Bookshelf.ListShelf)
		protected.POST("/bookshelf", h.Bookshelf.AddToShelf)
		protected.DELETE("/bookshelf/:id", h.Bookshelf.RemoveFromShelf)

		protected.GET("/groups", h.Groups.MyGroups)
		protected.GET("/groups/:id/invitations", h.Groups.GroupInvitations)
		protected.POST("/groups/:id/invitations", h.Groups.SendInvitation)
		protected.GET("/invitations", h.Groups.PendingInvitations)
		protected.POST("/invitations/:id/accept", h.Groups.AcceptInvitation)
		protected.POST("/invitations/:id/decline", h.Groups.DeclineInvitation)
		protected.DELETE("/invitations/:id", h.Groups.RevokeInvitation)

		protected.POST("/payouts/onboard", h.Payouts.Onboard)
		protected.GET("/payouts/accounts/:id", h.Payouts.Status)
		protected.GET("/payouts/accounts/:id/dashboard", h.Payouts.DashboardLink)

		protected.GET("/staff", h.Staff.Panel)
		protected.GET("/staff/pending-users", h.Staff.PendingUsers)
		protected.POST("/staff/pending-users/:id/approve", h.Staff.ApproveUser)
	}
}
