package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/handlers"
	"github.com/havenwelfare/haven-backend/internal/middleware"
)

// Handlers groups every HTTP handler the route table mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Admin     *handlers.AdminHandler
	Donation  *handlers.DonationHandler
	Treatment *handlers.TreatmentHandler
	Registry  *handlers.RegistryHandler
	Doctor    *handlers.DoctorHandler
	Health    *handlers.HealthHandler
}

// Options carries what the route table needs besides the handlers.
// LimiterStorage may be nil for in-process counters.
type Options struct {
	Tokens         *auth.TokenIssuer
	Resolver       *auth.Resolver
	LimiterStorage fiber.Storage
	APIRateLimit   int
	AuthRateLimit  int
}

// rateLimit counts requests per IP. scope keeps limiters sharing one
// storage from reading each other's counters.
func rateLimit(scope string, max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return scope + ":" + c.IP() },
		Storage:           storage,
	})
}

// with returns a fresh chain of mw followed by h.
func with(mw []fiber.Handler, h ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(h))
	out = append(out, mw...)
	return append(out, h...)
}

func Setup(app *fiber.App, h Handlers, opts Options) {
	if opts.APIRateLimit == 0 {
		opts.APIRateLimit = 60
	}
	if opts.AuthRateLimit == 0 {
		opts.AuthRateLimit = 10
	}

	authed := middleware.Authenticated(opts.Tokens, opts.Resolver)
	optional := middleware.OptionalAuth(opts.Tokens, opts.Resolver)
	admin := with(authed, middleware.Require(auth.ManageUsers))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit("api", opts.APIRateLimit, opts.LimiterStorage))

	api.Get("/health", h.Health.Check)

	// Auth: credential endpoints share a stricter 10 req/min limit; the
	// authenticated /auth routes only count against the API limit.
	credentials := rateLimit("auth", opts.AuthRateLimit, opts.LimiterStorage)
	api.Post("/auth/register", credentials, h.Auth.Register)
	api.Post("/auth/login", credentials, h.Auth.Login)
	api.Post("/auth/forgot-password", credentials, h.Auth.ForgotPassword)
	api.Post("/auth/reset-password", credentials, h.Auth.ResetPassword)
	api.Get("/auth/me", with(authed, h.Auth.Me)...)
	api.Put("/auth/profile", with(authed, h.Auth.UpdateProfile)...)
	api.Put("/auth/change-password", with(authed, h.Auth.ChangePassword)...)

	// Admin panel
	adminGroup := api.Group("/admin", admin...)
	adminGroup.Get("/users", h.Admin.ListUsers)
	adminGroup.Put("/users/:id/status", h.Admin.UpdateUserStatus)
	adminGroup.Get("/analytics", h.Admin.Analytics)
	adminGroup.Get("/audit-logs", h.Admin.AuditLogs)
	adminGroup.Get("/payment-settings", h.Admin.PaymentSettings)
	adminGroup.Put("/payment-settings", h.Admin.UpdatePaymentSettings)
	adminGroup.Post("/payment-settings/qr-code", h.Admin.UploadQRCode)
	adminGroup.Get("/smtp-settings", h.Admin.SMTPSettings)
	adminGroup.Put("/smtp-settings", h.Admin.UpdateSMTPSettings)
	adminGroup.Get("/donations/export", h.Admin.ExportDonations)

	// Rehab centers: approved ones are public, the rest is admin only
	api.Get("/rehab-centers", with(optional, h.Registry.ListRehabCenters)...)
	api.Get("/rehab-centers/:id", with(optional, h.Registry.GetRehabCenter)...)
	api.Post("/rehab-centers", with(authed, h.Registry.CreateRehabCenter)...)
	api.Put("/rehab-centers/:id", with(authed, h.Registry.UpdateRehabCenter)...)
	api.Delete("/rehab-centers/:id", with(authed, h.Registry.DeleteRehabCenter)...)

	// Addiction types
	api.Get("/addiction-types", h.Registry.ListAddictionTypes)
	api.Post("/addiction-types", with(authed, h.Registry.CreateAddictionType)...)
	api.Put("/addiction-types/:id", with(authed, h.Registry.UpdateAddictionType)...)
	api.Delete("/addiction-types/:id", with(authed, h.Registry.DeleteAddictionType)...)

	// Donations: static paths before /:id
	api.Get("/donations/payment-info", h.Donation.PaymentInfo)
	api.Get("/donations/patients", h.Donation.Patients)
	api.Get("/donations/track/:transactionId", h.Donation.Track)
	api.Post("/donations", h.Donation.Submit)
	api.Get("/donations", with(authed, h.Donation.List)...)
	api.Get("/donations/:id/receipt", h.Donation.Receipt)
	api.Get("/donations/:id", with(authed, h.Donation.Get)...)
	api.Put("/donations/:id/approve", with(authed, h.Donation.Approve)...)

	// Treatment requests
	api.Post("/treatment-requests", with(authed, h.Treatment.Create)...)
	api.Get("/treatment-requests", with(authed, h.Treatment.List)...)
	api.Put("/treatment-requests/:id/respond", with(authed, h.Treatment.Respond)...)
	api.Put("/treatment-requests/:id/notes", with(authed, h.Treatment.UpdateNotes)...)

	// Doctors
	api.Get("/doctors", h.Doctor.List)
	api.Post("/doctors/verification-document", with(authed, h.Doctor.UploadVerificationDocument)...)
	api.Put("/doctors/profile-data", with(authed, h.Doctor.UpdateProfileData)...)
}
