package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contentapp "github.com/comfund/backend/internal/application/content"
	fundapp "github.com/comfund/backend/internal/application/fund"
	identityapp "github.com/comfund/backend/internal/application/identity"
	membershipapp "github.com/comfund/backend/internal/application/membership"
	"github.com/comfund/backend/internal/application/notify"
	"github.com/comfund/backend/internal/domain/fund"
	"github.com/comfund/backend/internal/domain/membership"
	"github.com/comfund/backend/internal/infrastructure/auth"
	"github.com/comfund/backend/internal/infrastructure/cache"
	"github.com/comfund/backend/internal/infrastructure/config"
	"github.com/comfund/backend/internal/infrastructure/event"
	"github.com/comfund/backend/internal/infrastructure/persistence"
	"github.com/comfund/backend/internal/infrastructure/storage"
	"github.com/comfund/backend/internal/interfaces/http/handler"
	"github.com/comfund/backend/internal/interfaces/http/middleware"
	"github.com/comfund/backend/internal/interfaces/http/router"
	"github.com/comfund/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@comfund.test"
	adminPassword = "admin-secret"
	maxUploadSize = 1 << 20
	streamPath    = "/api/v1/stream"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// apiFixture runs the full HTTP stack over an in-memory SQLite database
type apiFixture struct {
	engine     *gin.Engine
	db         *gorm.DB
	members    *persistence.GormMemberRepository
	media      *storage.StubMediaStorage
	hub        *notify.Hub
	adminID    uuid.UUID
	adminToken string
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	maxStreamClients int
	ping             pingFunc
}

func withMaxStreamClients(n int) fixtureOption {
	return func(c *fixtureConfig) { c.maxStreamClients = n }
}

func withPing(fn pingFunc) fixtureOption {
	return func(c *fixtureConfig) { c.ping = fn }
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	cfg := fixtureConfig{maxStreamClients: 4}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := zap.NewNop()
	db := testutil.NewSQLiteDB(t)
	if cfg.ping == nil {
		cfg.ping = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	members := persistence.NewGormMemberRepository(db)
	donations := persistence.NewGormDonationRepository(db)
	entries := persistence.NewGormLedgerEntryRepository(db)
	notices := persistence.NewGormNoticeRepository(db)
	activities := persistence.NewGormActivityRepository(db)
	media := storage.NewStubMediaStorage()
	bus := event.NewInMemoryEventBus(log)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-0123456789abcdef",
		Issuer:                 "comfund-test",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
	})

	stats := fundapp.NewReconciliationService(members, donations, entries, cache.NewInMemoryStatsCache(), nil,
		fundapp.ReconciliationConfig{
			Policy:         fund.DefaultPolicy(),
			CacheTTL:       time.Minute,
			OrgName:        "Comfund",
			OfficialNumber: "01700000000",
		}, log)
	hub := notify.NewHub(16, cfg.maxStreamClients, log)
	bus.Subscribe(notify.NewChangeNotifier(stats, hub, nil, log))

	authService := identityapp.NewAuthService(members, jwtService, blacklist, bus,
		identityapp.AuthServiceConfig{DefaultMonthlyAmount: decimal.NewFromInt(500)}, log)
	memberService := membershipapp.NewMemberService(members, bus, blacklist, nil,
		membershipapp.MemberServiceConfig{
			CommitteePositions: []string{"President", "Secretary", "Treasurer"},
			RevocationTTL:      24 * time.Hour,
		}, log)
	donationService := fundapp.NewDonationService(donations, members, media, bus, nil, log)
	ledgerService := fundapp.NewLedgerService(entries, donations, stats, bus, cache.NewLocalLocker(),
		fundapp.LedgerServiceConfig{OrgName: "Comfund", Location: time.UTC}, log)
	dashboardService := fundapp.NewDashboardService(members, donations, activities, stats)
	noticeService := contentapp.NewNoticeService(notices, bus, time.UTC, log)
	activityService := contentapp.NewActivityService(activities, media, bus,
		contentapp.ActivityServiceConfig{Location: time.UTC, MaxImageSize: maxUploadSize}, log)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	jwt := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:      jwtService,
		Revocation:      authService,
		QueryTokenPaths: []string{streamPath},
		Logger:          log,
	})
	r := router.NewRouter(engine)
	for _, g := range router.Groups(router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Member:   handler.NewMemberHandler(memberService),
		Donation: handler.NewDonationHandler(donationService, maxUploadSize),
		Ledger:   handler.NewLedgerHandler(ledgerService),
		Fund:     handler.NewFundHandler(stats, dashboardService),
		Notice:   handler.NewNoticeHandler(noticeService),
		Activity: handler.NewActivityHandler(activityService, maxUploadSize),
		Stream:   handler.NewStreamHandler(hub, time.Hour, log),
	}, router.Guards{JWT: jwt, Principals: authService, Logger: log}) {
		r.Register(g)
	}
	r.Setup()
	router.SystemRoutes(engine, handler.NewSystemHandler(cfg.ping, "comfund", "test"), nil, nil)

	created, err := authService.EnsureBootstrapAdmin(context.Background(), identityapp.BootstrapAdmin{
		Name:     "Site Admin",
		Email:    adminEmail,
		Password: adminPassword,
	})
	require.NoError(t, err)
	require.True(t, created)

	f := &apiFixture{
		engine:  engine,
		db:      db,
		members: members,
		media:   media,
		hub:     hub,
	}
	tokens := f.login(t, adminEmail, adminPassword)
	f.adminID = tokens.Member.ID
	f.adminToken = tokens.AccessToken
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, f.engine, testutil.Request{Method: method, Path: path, Body: body, Token: token})
}

func (f *apiFixture) login(t *testing.T, email, password string) identityapp.TokenResult {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", identityapp.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return testutil.DecodeData[identityapp.TokenResult](t, w)
}

// register signs up a member and returns its ID
func (f *apiFixture) register(t *testing.T, name, email string) uuid.UUID {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/auth/register", "", identityapp.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "member-secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[identityapp.RegisterResult](t, w).Member.ID
}

// approvedMember registers and approves a member and returns its ID and
// access token
func (f *apiFixture) approvedMember(t *testing.T, name, email string) (uuid.UUID, string) {
	t.Helper()
	id := f.register(t, name, email)
	w := f.do(t, http.MethodPatch, "/api/v1/admin/members/"+id.String()+"/status", f.adminToken,
		membershipapp.SetStatusRequest{Status: "Approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return id, f.login(t, email, "member-secret").AccessToken
}

// grant replaces a member's permissions directly in the store
func (f *apiFixture) grant(t *testing.T, id uuid.UUID, perms membership.Permissions) {
	t.Helper()
	ctx := context.Background()
	m, err := f.members.FindByID(ctx, id)
	require.NoError(t, err)
	m.SetPermissions(perms)
	require.NoError(t, f.members.Save(ctx, m))
}
