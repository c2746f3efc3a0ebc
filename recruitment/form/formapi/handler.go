package formapi

import (
	"github.com/Abraxas-365/hirekit/pkg/httpx"
	"github.com/Abraxas-365/hirekit/pkg/iam/auth"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/pkg/ratelimit"
	"github.com/Abraxas-365/hirekit/recruitment/form"
	"github.com/Abraxas-365/hirekit/recruitment/form/formsrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for application form operations
type Handlers struct {
	service *formsrv.FormService
}

// NewHandlers creates a new form handlers instance
func NewHandlers(service *formsrv.FormService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateForm creates the caller's form for a job
// POST /api/forms
func (h *Handlers) CreateForm(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	var req form.CreateFormRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	newForm, err := h.service.CreateForm(c.Context(), *authContext.UserID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(newForm)
}

// ListForms lists the caller's forms
// GET /api/forms
func (h *Handlers) ListForms(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	forms, err := h.service.ListForms(c.Context(), *authContext.UserID, httpx.ParsePaginationOptions(c))
	if err != nil {
		return err
	}

	return c.JSON(forms)
}

// GetStats rolls up the caller's forms
// GET /api/forms/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	stats, err := h.service.GetStats(c.Context(), *authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

// GetFormByJob returns the caller's form for a job; {"form": null} when there is none
// GET /api/forms/by-job/:jobId
func (h *Handlers) GetFormByJob(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	jobID := kernel.JobID(c.Params("jobId"))
	if jobID.IsEmpty() {
		return form.ErrValidationFailed().WithDetail("job_id", "missing or empty")
	}

	f, err := h.service.GetFormByJob(c.Context(), jobID, *authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(form.FormByJobResponse{Form: f})
}

// GetForm retrieves a form by ID
// GET /api/forms/:id
func (h *Handlers) GetForm(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	f, err := h.service.GetForm(c.Context(), id, *authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(f)
}

// UpdateForm patches a form
// PATCH /api/forms/:id
func (h *Handlers) UpdateForm(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req form.UpdateFormRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	f, err := h.service.UpdateForm(c.Context(), id, *authContext.UserID, req)
	if err != nil {
		return err
	}

	return c.JSON(f)
}

// DeleteForm deletes a form
// DELETE /api/forms/:id
func (h *Handlers) DeleteForm(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteForm(c.Context(), id, *authContext.UserID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetPublicForm serves the intake form to anonymous applicants
// GET /api/public/jobs/:jobId/form
func (h *Handlers) GetPublicForm(c *fiber.Ctx) error {
	f, err := h.service.GetPublicForm(c.Context(), kernel.JobID(c.Params("jobId")))
	if err != nil {
		return err
	}

	return c.JSON(f.ToPublic())
}

// SubmitPublic counts an anonymous submission against the job's visible form
// POST /api/public/jobs/:jobId/form/submissions
func (h *Handlers) SubmitPublic(c *fiber.Ctx) error {
	receipt, err := h.service.SubmitPublic(c.Context(), kernel.JobID(c.Params("jobId")))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(receipt)
}

// ============================================================================
// Helpers
// ============================================================================

func requestTarget(c *fiber.Ctx) (*auth.AuthContext, kernel.ApplicationFormID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return nil, "", auth.ErrMissingCredentials()
	}

	id := kernel.ApplicationFormID(c.Params("id"))
	if id.IsEmpty() {
		return nil, "", form.ErrNotFound().WithDetail("id", "missing or empty")
	}
	return authContext, id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return form.ErrValidationFailed().WithDetail("parse_error", err.Error())
	}
	if fields := httpx.ValidateStruct(out); fields != nil {
		return form.ErrValidationFailed().WithDetail("fields", fields)
	}
	return nil
}

// RegisterRoutes registers the owner-facing form routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/forms", authMiddleware.Authenticate())

	api.Get("/",
		authMiddleware.RequireScope(auth.ScopeFormsRead),
		handlers.ListForms,
	)

	api.Post("/",
		authMiddleware.RequireScope(auth.ScopeFormsWrite),
		handlers.CreateForm,
	)

	api.Get("/stats",
		authMiddleware.RequireScope(auth.ScopeFormsStats),
		handlers.GetStats,
	)

	api.Get("/by-job/:jobId",
		authMiddleware.RequireScope(auth.ScopeFormsRead),
		handlers.GetFormByJob,
	)

	api.Get("/:id",
		authMiddleware.RequireScope(auth.ScopeFormsRead),
		handlers.GetForm,
	)

	api.Patch("/:id",
		authMiddleware.RequireScope(auth.ScopeFormsWrite),
		handlers.UpdateForm,
	)

	api.Delete("/:id",
		authMiddleware.RequireScope(auth.ScopeFormsDelete),
		handlers.DeleteForm,
	)
}

// RegisterPublicRoutes registers the unauthenticated intake routes. A nil
// limiter leaves them unthrottled.
func RegisterPublicRoutes(app *fiber.App, handlers *Handlers, limiter ratelimit.Limiter) {
	public := app.Group("/api/public/jobs/:jobId/form")

	if limiter != nil {
		public.Use(ratelimit.Middleware(limiter, ratelimit.ByIPAndPath))
	}

	public.Get("/", handlers.GetPublicForm)
	public.Post("/submissions", handlers.SubmitPublic)
}
