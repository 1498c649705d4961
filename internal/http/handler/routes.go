package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"mailroom/docs"
	"mailroom/internal/http/middleware"
	"mailroom/internal/model"
	"mailroom/internal/service"
)

// Services bundles everything the routes depend on.
type Services struct {
	DB            *sql.DB
	Dependencies  []Pinger
	Auth          service.AuthService
	Users         service.UserService
	KYC           service.KYCService
	Locations     service.LocationService
	Mailboxes     service.MailboxService
	Mail          service.MailService
	Actions       service.ActionService
	Packages      service.PackageService
	Subscriptions service.SubscriptionService
	Activity      service.ActivityService
	AllowedIPs    service.AllowedIPService
	// LoginLimit guards the credential endpoints. Nil disables it.
	LoginLimit fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
//
//	public    /health /healthz /swagger /packages /auth /webhooks
//	user      JWT
//	operator  JWT + OPERATOR or above (/ops)
//	admin     JWT + ADMIN + IP allowlist (/admin)
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.DB, s.Dependencies...))
	app.Get("/healthz", Liveness())
	app.Get("/swagger/*", swaggerUI)

	app.Get("/packages", ListPackages(s.Packages, true))
	app.Get("/packages/:id", GetPackage(s.Packages))
	app.Post("/webhooks/payments", PaymentWebhook(s.Subscriptions))

	auth := app.Group("/auth")
	if s.LoginLimit != nil {
		auth.Use(s.LoginLimit)
	}
	auth.Post("/register", Register(s.Auth))
	auth.Post("/login", Login(s.Auth))

	authn := middleware.Authenticate(s.Auth)

	me := app.Group("/me", authn)
	me.Get("", Me(s.Auth))
	me.Get("/mailbox", MyMailbox(s.Mailboxes))

	kyc := app.Group("/kyc", authn)
	kyc.Post("", SubmitKYC(s.KYC))
	kyc.Get("/me", MyKYC(s.KYC))

	mail := app.Group("/mail", authn)
	mail.Get("", ListMail(s.Mail))
	mail.Get("/:id", GetMail(s.Mail))
	mail.Get("/:id/scan", MailScanURL(s.Mail))
	mail.Get("/:id/envelope", MailEnvelopeURL(s.Mail))
	mail.Post("/:id/actions", RequestAction(s.Actions))

	actions := app.Group("/actions", authn)
	actions.Get("", ListActions(s.Actions))
	actions.Get("/:id", GetAction(s.Actions))
	actions.Post("/:id/cancel", CancelAction(s.Actions))

	app.Get("/subscriptions/me", authn, MySubscription(s.Subscriptions))

	ops := app.Group("/ops", authn, middleware.RequireRole(model.RoleOperator))
	ops.Get("/kyc", ListPendingKYC(s.KYC))
	ops.Get("/kyc/:id/document", KYCDocumentURL(s.KYC))
	ops.Post("/kyc/:id/approve", ApproveKYC(s.KYC))
	ops.Post("/kyc/:id/reject", RejectKYC(s.KYC))
	ops.Get("/mailboxes", ListMailboxes(s.Mailboxes))
	ops.Get("/mailboxes/:id", GetMailbox(s.Mailboxes))
	ops.Get("/mailboxes/:id/fit", CheckFit(s.Mailboxes))
	ops.Post("/mail", IntakeMail(s.Mail))
	ops.Get("/mail", ListMail(s.Mail))
	ops.Get("/actions", ListActions(s.Actions))
	ops.Post("/actions/:id/approve", ApproveAction(s.Actions))
	ops.Post("/actions/:id/reject", RejectAction(s.Actions))
	ops.Post("/actions/:id/start", StartAction(s.Actions))
	ops.Post("/actions/:id/complete", CompleteAction(s.Actions))

	admin := app.Group("/admin", authn, middleware.RequireRole(model.RoleAdmin), middleware.IPAllowlist(s.AllowedIPs))
	admin.Post("/users", CreateUser(s.Users))
	admin.Get("/users", ListUsers(s.Users))
	admin.Get("/users/:id", GetUser(s.Users))
	admin.Patch("/users/:id/role", UpdateUserRole(s.Users))
	admin.Delete("/users/:id", DeleteUser(s.Users))

	admin.Post("/locations", CreateLocation(s.Locations))
	admin.Get("/locations", ListLocations(s.Locations))
	admin.Get("/locations/:id", GetLocation(s.Locations))
	admin.Post("/locations/:id/clusters", AddCluster(s.Locations))
	admin.Delete("/clusters/:id", DeleteCluster(s.Locations))

	admin.Post("/mailboxes", CreateMailbox(s.Mailboxes))
	admin.Patch("/mailboxes/:id", UpdateMailbox(s.Mailboxes))
	admin.Post("/mailboxes/:id/assign", AssignMailbox(s.Mailboxes))
	admin.Post("/mailboxes/:id/release", ReleaseMailbox(s.Mailboxes))

	admin.Get("/packages", ListPackages(s.Packages, false))
	admin.Post("/packages", CreatePackage(s.Packages))
	admin.Put("/packages/:id", UpdatePackage(s.Packages))
	admin.Delete("/packages/:id", DeletePackage(s.Packages))

	admin.Get("/subscriptions", ListSubscriptions(s.Subscriptions))
	admin.Get("/activity", ListActivity(s.Activity))

	admin.Get("/allowed-ips", ListAllowedIPs(s.AllowedIPs))
	admin.Post("/allowed-ips", AddAllowedIP(s.AllowedIPs))
	admin.Delete("/allowed-ips/:id", DeleteAllowedIP(s.AllowedIPs))
}

// swaggerUI serves the OpenAPI document with the host and scheme the caller used.
func swaggerUI(c *fiber.Ctx) error {
	scheme := c.Protocol()
	if proto := c.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	docs.SwaggerInfo.Host = c.Get("Host")
	docs.SwaggerInfo.Schemes = []string{scheme}

	return swagger.HandlerDefault(c)
}
