package httpx

import (
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Access       AccessChecker
	Roles        ports.RoleDirectory // optional; role shown by /auth/status
	Doctors      *service.DoctorService
	Appointments *service.AppointmentService
	RoleAdmin    *service.RoleService

	// Metrics serves /metrics when set.
	Metrics      http.Handler
	HealthChecks map[string]HealthChecker

	CookieDomain  string
	SecureCookies bool
	// LoginPath is where unauthenticated browsers are sent; defaults to /login.
	LoginPath  string
	AccessWait time.Duration
	Logger     *slog.Logger
}

// NewRouter creates and configures a new HTTP router with the browser middleware chain.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.HealthChecks))
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}

	if services.Auth != nil {
		registerAuthRoutes(mux, &AuthHandlers{
			Svc:           services.Auth,
			Roles:         services.Roles,
			CookieDomain:  services.CookieDomain,
			SecureCookies: services.SecureCookies,
			Logger:        logger,
		})
	}

	if services.Access != nil {
		tiers := accessTiers{
			checker:  services.Access,
			redirect: services.LoginPath,
			wait:     services.AccessWait,
			logger:   logger,
		}
		mux.Handle("GET /api/access", http.HandlerFunc((&AccessHandlers{Checker: services.Access, Wait: services.AccessWait}).Check))
		if services.Doctors != nil {
			registerDoctorRoutes(mux, &DoctorHandlers{Svc: services.Doctors, Logger: logger}, tiers)
		}
		if services.Appointments != nil {
			registerAppointmentRoutes(mux, &AppointmentHandlers{Svc: services.Appointments, Logger: logger}, tiers)
		}
		if services.RoleAdmin != nil {
			registerRoleRoutes(mux, &RoleHandlers{Svc: services.RoleAdmin, Logger: logger}, tiers)
		}
	}

	return Recover(logger)(Logging(logger)(BrowserDetection()(mux)))
}

// accessTiers builds RequireAccess wrappers sharing one checker and redirect target.
type accessTiers struct {
	checker  AccessChecker
	redirect string
	wait     time.Duration
	logger   *slog.Logger
}

func (t accessTiers) require(role domainauth.Role, h http.HandlerFunc) http.Handler {
	return RequireAccess(AccessOptions{
		Checker: t.checker,
		Request: domainauth.AccessRequest{RequiredRole: role, RedirectTarget: t.redirect},
		Wait:    t.wait,
		Logger:  t.logger,
	})(h)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/firebase", h.Firebase)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/signed-out", h.SignedOut)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("POST /auth/quick-login", h.QuickLogin)
	mux.HandleFunc("POST /auth/quick-logout", h.QuickLogout)
}

func registerDoctorRoutes(mux *http.ServeMux, h *DoctorHandlers, t accessTiers) {
	mux.HandleFunc("GET /api/doctors", h.List)
	mux.HandleFunc("GET /api/doctors/{id}", h.GetByID)
	mux.Handle("POST /api/admin/doctors", t.require(domainauth.RoleAdmin, h.Create))
	mux.Handle("PUT /api/admin/doctors/{id}", t.require(domainauth.RoleAdmin, h.Update))
	mux.Handle("DELETE /api/admin/doctors/{id}", t.require(domainauth.RoleAdmin, h.Delete))
}

func registerAppointmentRoutes(mux *http.ServeMux, h *AppointmentHandlers, t accessTiers) {
	mux.Handle("POST /api/appointments", t.require(domainauth.RoleUser, h.Book))
	mux.Handle("GET /api/appointments", t.require(domainauth.RoleUser, h.List))
	mux.Handle("POST /api/appointments/{id}/cancel", t.require(domainauth.RoleUser, h.Cancel))
}

func registerRoleRoutes(mux *http.ServeMux, h *RoleHandlers, t accessTiers) {
	mux.Handle("GET /api/superadmin/roles", t.require(domainauth.RoleModerator, h.List))
	mux.Handle("PUT /api/superadmin/roles/{user_id}", t.require(domainauth.RoleModerator, h.Assign))
	mux.Handle("DELETE /api/superadmin/roles/{user_id}", t.require(domainauth.RoleModerator, h.Revoke))
}
