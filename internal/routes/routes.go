package routes

import (
	"time"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/handlers"
	"github.com/callcleaner/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Number       *handlers.NumberHandler
	Settings     *handlers.SettingsHandler
	BlockedCalls *handlers.BlockedCallsHandler
	Reports      *handlers.ReportHandler
	Sync         *handlers.SyncHandler
	App          *handlers.AppHandler
	Admin        *handlers.AdminHandler
}

func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, admins middleware.AdminChecker) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(60))

	api.Get("/health", h.Health.Check)
	api.Get("/privacy-policy", h.App.PrivacyPolicy)

	appInfo := api.Group("/app")
	appInfo.Get("/version", h.App.Version)
	appInfo.Get("/required-permissions", h.App.RequiredPermissions)
	appInfo.Get("/config", h.App.Config)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(rateLimit(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh-token", h.Auth.Refresh)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/confirm-email", h.Auth.ConfirmEmail)

	// Protected routes get the JWT middleware one by one so public routes above
	// stay untouched.
	protect := []fiber.Handler{middleware.JWTProtected(cfg), middleware.UserContext()}
	with := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, protect...), handler)
	}

	api.Post("/auth/logout", with(h.Auth.Logout)...)
	api.Get("/auth/verify-token", with(h.Auth.VerifyToken)...)
	api.Put("/auth/update-profile", with(h.Auth.UpdateProfile)...)
	api.Delete("/auth/account", with(h.Auth.DeleteAccount)...)

	api.Post("/check-number", with(h.Number.CheckNumber)...)
	api.Post("/incoming-call", with(h.Number.IncomingCall)...)
	api.Get("/number/:number/info", with(h.Number.NumberInfo)...)

	settings := api.Group("/settings", protect...)
	settings.Get("/", h.Settings.Get)
	settings.Put("/blocking-mode", h.Settings.UpdateBlockingMode)
	settings.Put("/working-hours", h.Settings.UpdateWorkingHours)
	settings.Put("/notifications", h.Settings.UpdateNotifications)
	settings.Get("/whitelist", h.Settings.GetWhitelist)
	settings.Post("/whitelist", h.Settings.AddToWhitelist)
	settings.Delete("/whitelist/:number", h.Settings.RemoveFromWhitelist)

	calls := api.Group("/blocked-calls", protect...)
	calls.Get("/", h.BlockedCalls.List)
	calls.Get("/stats", h.BlockedCalls.Stats)
	calls.Delete("/", h.BlockedCalls.DeleteAll)
	calls.Delete("/:id", h.BlockedCalls.Delete)
	calls.Put("/:id/report-wrong", h.BlockedCalls.ReportWrong)

	reports := api.Group("/reports", protect...)
	reports.Post("/", h.Reports.Submit)
	reports.Get("/recent-calls", h.Reports.RecentCalls)
	reports.Get("/spam-types", h.Reports.SpamTypes)

	sync := api.Group("/sync", protect...)
	sync.Get("/last-update", h.Sync.LastUpdate)
	sync.Post("/blocked-numbers", h.Sync.BlockedNumbers)
	sync.Post("/settings", h.Sync.Settings)

	api.Post("/app/verify-permissions", with(h.App.VerifyPermissions)...)

	admin := api.Group("/admin", append(protect, middleware.AdminRequired(admins, cfg))...)
	admin.Get("/users", h.Admin.ListUsers)
	admin.Get("/users/:id", h.Admin.GetUser)
	admin.Delete("/users/:id", h.Admin.DeactivateUser)
	admin.Get("/reported-numbers", h.Admin.ReportedNumbers)
	admin.Put("/config/:key", h.App.SetConfig)
	admin.Delete("/config/:key", h.App.DeleteConfig)
}
