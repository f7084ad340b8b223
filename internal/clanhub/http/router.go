package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/squadcommunity/clanhub/internal/clanhub/discord"
	"github.com/squadcommunity/clanhub/internal/clanhub/metrics"
	"github.com/squadcommunity/clanhub/internal/clanhub/service"
	"github.com/squadcommunity/clanhub/internal/clanhub/steam"
	"github.com/squadcommunity/clanhub/internal/clanhub/store"
	"github.com/squadcommunity/clanhub/pkg/httpx"
	"github.com/squadcommunity/clanhub/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	baseURL      string
	frontendURL  string

	store     store.Store
	resolver  *IdentityResolver
	collector *metrics.Collector
	gatherer  prometheus.Gatherer

	AuthService       *service.AuthService
	PlayerService     *service.PlayerService
	ClanService       *service.ClanService
	MembershipService *service.MembershipService
	OAuthStateService *service.OAuthStateService
	PresenceService   *service.PresenceService

	SteamClient   *steam.Client
	DiscordClient *discord.Client
}

type RouterConfig struct {
	BuildVersion string
	BaseURL      string
	FrontendURL  string
}

func NewRouter(cfg RouterConfig, st store.Store, logger *slog.Logger) *Router {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: cfg.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		baseURL:      cfg.BaseURL,
		frontendURL:  cfg.FrontendURL,
		store:        st,
		collector:    collector,
		gatherer:     registry,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Middleware(collector),
	}

	return r
}

// ApplyRoutes registers every route. Services must be assigned first.
func (r *Router) ApplyRoutes(adminSteamIDs []string) {
	r.resolver = NewIdentityResolver(r.AuthService, adminSteamIDs)

	r.registerAuth()
	r.registerClans()
	r.registerApplications()
	r.registerInvitations()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:        r.AuthService,
		Players:     r.PlayerService,
		States:      r.OAuthStateService,
		Steam:       r.SteamClient,
		Discord:     r.DiscordClient,
		Metrics:     r.collector,
		BaseURL:     r.baseURL,
		FrontendURL: r.frontendURL,
	}

	r.Mux.Handle("GET /api/auth/steam/login",
		httpx.Chain(http.HandlerFunc(h.HandleSteamLogin),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/steam/callback",
		httpx.Chain(http.HandlerFunc(h.HandleSteamCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/discord/link",
		httpx.Chain(http.HandlerFunc(h.HandleDiscordLink),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/discord/callback",
		httpx.Chain(http.HandlerFunc(h.HandleDiscordCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout/all",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutAll),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerClans() {
	h := &ClanHandler{
		Clans:      r.ClanService,
		Membership: r.MembershipService,
		Players:    r.PlayerService,
		Presence:   r.PresenceService,
	}

	r.Mux.Handle("GET /api/clans",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /api/clans",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/clans/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("PATCH /api/clans/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/clans/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/clans/{id}/members",
		httpx.Chain(http.HandlerFunc(h.HandleMembers),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/clans/{id}/join",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/clans/{id}/leave",
		httpx.Chain(http.HandlerFunc(h.HandleLeave),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/clans/{id}/members/{playerID}/kick",
		httpx.Chain(http.HandlerFunc(h.HandleKick),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /api/clans/{id}/members/{playerID}/role",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerApplications() {
	h := &ApplicationHandler{Membership: r.MembershipService}

	r.Mux.Handle("POST /api/clans/{id}/applications",
		httpx.Chain(http.HandlerFunc(h.HandleApply),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/clans/{id}/applications",
		httpx.Chain(http.HandlerFunc(h.HandleListForClan),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/applications/{id}/approve",
		httpx.Chain(http.HandlerFunc(h.HandleApprove),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/applications/{id}/reject",
		httpx.Chain(http.HandlerFunc(h.HandleReject),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/applications/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleWithdraw),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationHandler{Membership: r.MembershipService}

	r.Mux.Handle("POST /api/clans/{id}/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleInvite),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /api/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleListMine),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/invitations/{id}/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/invitations/{id}/reject",
		httpx.Chain(http.HandlerFunc(h.HandleReject),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/invitations/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleCancel),
			httpx.RequireAuth(r.resolver),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
	r.Mux.Handle("GET /metrics", metrics.Handler(r.gatherer))
}
