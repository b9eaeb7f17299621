package router

import (
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/interfaces/http/handler"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth     *handler.AuthHandler
	Member   *handler.MemberHandler
	Donation *handler.DonationHandler
	Ledger   *handler.LedgerHandler
	Fund     *handler.FundHandler
	Notice   *handler.NoticeHandler
	Activity *handler.ActivityHandler
	Stream   *handler.StreamHandler
}

// Guards holds the middleware protecting non-public routes
type Guards struct {
	// JWT validates the access token
	JWT gin.HandlerFunc
	// Principals loads the member behind a validated token
	Principals middleware.PrincipalLoader
	// AuthLimiter throttles credential endpoints per client IP; nil disables
	AuthLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// Groups builds the domain route groups for the API
func Groups(h Handlers, g Guards) []*DomainGroup {
	permCfg := middleware.PermissionConfig{Logger: g.Logger}
	authed := []gin.HandlerFunc{g.JWT, middleware.LoadPrincipal(g.Principals, permCfg)}
	approved := append(append([]gin.HandlerFunc{}, authed...), middleware.RequireApproved(permCfg))
	can := func(perm membership.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(perm, permCfg)
	}

	auth := NewDomainGroup("auth", "/auth")
	credentials := auth.Group("credentials", "")
	if g.AuthLimiter != nil {
		credentials.Use(middleware.RateLimit(g.AuthLimiter))
	}
	credentials.POST("/register", h.Auth.Register)
	credentials.POST("/login", h.Auth.Login)
	credentials.POST("/refresh", h.Auth.Refresh)
	session := auth.Group("session", "").Use(authed...)
	session.POST("/logout", h.Auth.Logout)
	session.GET("/me", h.Auth.Me)

	public := NewDomainGroup("public", "")
	public.GET("/committee", h.Member.Committee)
	public.GET("/notices", h.Notice.List)
	public.GET("/notices/:id", h.Notice.Get)
	public.GET("/activities", h.Activity.List)
	public.GET("/activities/:id", h.Activity.Get)
	public.GET("/fund/summary", h.Fund.Summary)
	public.GET("/payment-details", h.Fund.PaymentDetails)

	stream := NewDomainGroup("stream", "/stream").Use(authed...)
	stream.GET("", h.Stream.Stream)

	me := NewDomainGroup("me", "/me").Use(approved...)
	me.GET("/profile", h.Member.Profile)
	me.PUT("/profile", h.Member.UpdateProfile)
	me.GET("/stats", h.Fund.MyStats)
	me.GET("/payment-prefill", h.Fund.PaymentPrefill)
	me.GET("/messages", h.Member.MyMessages)
	me.GET("/donations", h.Donation.Mine)
	me.POST("/donations", h.Donation.Submit)

	fund := NewDomainGroup("fund", "/fund").Use(authed...).Use(can(membership.PermissionViewFund))
	fund.GET("/ledger", h.Ledger.Combined)

	admin := NewDomainGroup("admin", "/admin").Use(authed...)

	members := admin.Group("members", "/members").Use(can(membership.PermissionManageMembers))
	members.GET("", h.Member.List)
	members.GET("/:id", h.Member.Get)
	members.PUT("/:id", h.Member.Update)
	members.DELETE("/:id", h.Member.Delete)
	members.PATCH("/:id/status", h.Member.SetStatus)
	members.GET("/:id/messages", h.Member.Messages)
	members.POST("/:id/messages", h.Member.SendMessage)
	members.GET("/:id/stats", h.Fund.MemberStats)

	notices := admin.Group("notices", "/notices").Use(can(membership.PermissionPostNotices))
	notices.POST("", h.Notice.Create)
	notices.PUT("/:id", h.Notice.Update)
	notices.DELETE("/:id", h.Notice.Delete)

	activities := admin.Group("activities", "/activities").Use(can(membership.PermissionPostActivities))
	activities.POST("", h.Activity.Create)
	activities.PUT("/:id", h.Activity.Update)
	activities.DELETE("/:id", h.Activity.Delete)

	adminOnly := middleware.RequireAdmin(permCfg)

	dashboard := admin.Group("dashboard", "/dashboard").Use(adminOnly)
	dashboard.GET("", h.Fund.Dashboard)

	donations := admin.Group("donations", "/donations").Use(adminOnly)
	donations.GET("", h.Donation.List)
	donations.GET("/:id", h.Donation.Get)
	donations.PATCH("/:id/status", h.Donation.SetStatus)
	donations.DELETE("/:id", h.Donation.Delete)

	ledger := admin.Group("ledger", "/ledger").Use(adminOnly)
	ledger.GET("", h.Ledger.List)
	ledger.GET("/export", h.Ledger.Export)
	ledger.GET("/:id", h.Ledger.Get)
	ledger.POST("", h.Ledger.Create)
	ledger.PUT("/:id", h.Ledger.Update)
	ledger.DELETE("/:id", h.Ledger.Delete)

	return []*DomainGroup{auth, public, stream, me, fund, admin}
}

// SystemRoutes registers the unversioned probes and the API docs on the engine
func SystemRoutes(engine *gin.Engine, system *handler.SystemHandler, docs gin.HandlerFunc, docsGuard gin.HandlerFunc) {
	engine.GET("/health", system.Health)
	engine.GET("/ready", system.Ready)
	if docs != nil {
		handlers := []gin.HandlerFunc{docs}
		if docsGuard != nil {
			handlers = []gin.HandlerFunc{docsGuard, docs}
		}
		engine.GET("/swagger/*any", handlers...)
	}
}
