package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Reference      *handlers.ReferenceHandler
	Users          *handlers.UsersHandler
	FAQ            *handlers.FAQHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Authorizer     *auth.Authorizer
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/change-password", cfg.Auth.ChangePassword)

	registerTicketRoutes(protected, cfg)
	registerReferenceRoutes(protected, cfg)
	registerUserRoutes(protected, cfg)
	registerFAQRoutes(protected, cfg)

	protected.Get("/reports/tickets.xlsx", auth.Require(cfg.Authorizer, auth.ResourceReports, auth.ActionRead), cfg.Reports.TicketsWorkbook)
}

func registerTicketRoutes(r fiber.Router, cfg RouteConfig) {
	h := cfg.Tickets
	can := func(resource, action string) fiber.Handler {
		return auth.Require(cfg.Authorizer, resource, action)
	}
	readAll := can(auth.ResourceTickets, auth.ActionReadAll)

	t := r.Group("/tickets")
	t.Get("/", can(auth.ResourceTickets, auth.ActionRead), h.List)
	t.Post("/", can(auth.ResourceTickets, auth.ActionCreate), h.Create)

	t.Get("/stats", can(auth.ResourceReports, auth.ActionRead), h.Stats)
	t.Get("/active", readAll, h.Active)
	t.Get("/range", readAll, h.Range)
	t.Get("/user/:userId", can(auth.ResourceTickets, auth.ActionRead), h.ByUser)
	t.Get("/user/:userId/count", readAll, h.CountByUser)
	t.Get("/assigned/:userId", readAll, h.ByAssignee)
	t.Get("/department/:id", readAll, h.ByDepartment)
	t.Get("/team/:id", readAll, h.ByTeam)
	t.Get("/status/:id", readAll, h.ByStatus)
	t.Get("/priority/:id", readAll, h.ByPriority)
	t.Get("/category/:id", readAll, h.ByCategory)

	t.Get("/:id", can(auth.ResourceTickets, auth.ActionRead), h.Get)
	t.Put("/:id", can(auth.ResourceTickets, auth.ActionUpdate), h.Update)
	t.Delete("/:id", can(auth.ResourceTickets, auth.ActionDelete), h.Delete)

	assign := can(auth.ResourceTickets, auth.ActionAssign)
	t.Post("/:id/assign", assign, h.Assign)
	t.Post("/:id/unassign", assign, h.Unassign)
	t.Post("/:id/reassign", assign, h.Reassign)

	update := can(auth.ResourceTickets, auth.ActionUpdate)
	t.Post("/:id/status", update, h.UpdateStatus)
	t.Post("/:id/close", update, h.Close)
	t.Post("/:id/reopen", update, h.Reopen)

	t.Get("/:id/comments", can(auth.ResourceComments, auth.ActionRead), h.Comments)
	t.Post("/:id/comments", can(auth.ResourceComments, auth.ActionCreate), h.AddComment)
	t.Get("/:id/attachments", can(auth.ResourceAttachments, auth.ActionRead), h.Attachments)
	t.Post("/:id/attachments", can(auth.ResourceAttachments, auth.ActionCreate), h.AddAttachment)
	t.Get("/:id/feedback", can(auth.ResourceFeedback, auth.ActionRead), h.Feedback)
	t.Post("/:id/feedback", can(auth.ResourceFeedback, auth.ActionCreate), h.SubmitFeedback)
}

func registerReferenceRoutes(r fiber.Router, cfg RouteConfig) {
	h := cfg.Reference
	read := auth.Require(cfg.Authorizer, auth.ResourceReference, auth.ActionRead)
	create := auth.Require(cfg.Authorizer, auth.ResourceReference, auth.ActionCreate)
	update := auth.Require(cfg.Authorizer, auth.ResourceReference, auth.ActionUpdate)
	remove := auth.Require(cfg.Authorizer, auth.ResourceReference, auth.ActionDelete)

	d := r.Group("/departments")
	d.Get("/", read, h.ListDepartments)
	d.Post("/", create, h.CreateDepartment)
	d.Get("/:id", read, h.GetDepartment)
	d.Put("/:id", update, h.UpdateDepartment)
	d.Delete("/:id", remove, h.DeleteDepartment)
	d.Get("/:id/teams", read, h.DepartmentTeams)

	tm := r.Group("/teams")
	tm.Get("/", read, h.ListTeams)
	tm.Post("/", create, h.CreateTeam)
	tm.Get("/:id", read, h.GetTeam)
	tm.Put("/:id", update, h.UpdateTeam)
	tm.Delete("/:id", remove, h.DeleteTeam)

	c := r.Group("/ticket-categories")
	c.Get("/", read, h.ListCategories)
	c.Post("/", create, h.CreateCategory)
	c.Get("/:id", read, h.GetCategory)
	c.Put("/:id", update, h.UpdateCategory)
	c.Delete("/:id", remove, h.DeleteCategory)

	p := r.Group("/ticket-priorities")
	p.Get("/", read, h.ListPriorities)
	p.Post("/", create, h.CreatePriority)
	p.Get("/:id", read, h.GetPriority)
	p.Put("/:id", update, h.UpdatePriority)
	p.Delete("/:id", remove, h.DeletePriority)

	s := r.Group("/ticket-statuses")
	s.Get("/", read, h.ListStatuses)
	s.Post("/", create, h.CreateStatus)
	s.Get("/:id", read, h.GetStatus)
	s.Put("/:id", update, h.UpdateStatus)
	s.Delete("/:id", remove, h.DeleteStatus)
}

func registerUserRoutes(r fiber.Router, cfg RouteConfig) {
	h := cfg.Users
	read := auth.Require(cfg.Authorizer, auth.ResourceUsers, auth.ActionRead)
	create := auth.Require(cfg.Authorizer, auth.ResourceUsers, auth.ActionCreate)
	update := auth.Require(cfg.Authorizer, auth.ResourceUsers, auth.ActionUpdate)
	remove := auth.Require(cfg.Authorizer, auth.ResourceUsers, auth.ActionDelete)

	u := r.Group("/users")
	u.Get("/me", h.Me)
	u.Get("/roles", read, h.Roles)
	u.Get("/", read, h.List)
	u.Post("/", create, h.Create)
	u.Get("/:id", read, h.Get)
	u.Put("/:id", update, h.Update)
	u.Delete("/:id", remove, h.Delete)
	u.Post("/:id/roles", update, h.AssignRole)
	u.Delete("/:id/roles/:role", update, h.RemoveRole)
}

func registerFAQRoutes(r fiber.Router, cfg RouteConfig) {
	h := cfg.FAQ
	read := auth.Require(cfg.Authorizer, auth.ResourceFAQ, auth.ActionRead)
	write := auth.Require(cfg.Authorizer, auth.ResourceFAQ, auth.ActionWrite)

	f := r.Group("/faq")
	f.Get("/categories", read, h.ListCategories)
	f.Post("/categories", write, h.CreateCategory)
	f.Get("/categories/:id", read, h.GetCategory)
	f.Put("/categories/:id", write, h.UpdateCategory)
	f.Delete("/categories/:id", write, h.DeleteCategory)
	f.Get("/categories/:id/items", read, h.CategoryItems)

	f.Get("/items", read, h.ListItems)
	f.Post("/items", write, h.CreateItem)
	f.Get("/items/:id", read, h.GetItem)
	f.Put("/items/:id", write, h.UpdateItem)
	f.Delete("/items/:id", write, h.DeleteItem)
}
