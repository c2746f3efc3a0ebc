package pipelineapi

import (
	"github.com/Abraxas-365/hirekit/pkg/httpx"
	"github.com/Abraxas-365/hirekit/pkg/iam/auth"
	"github.com/Abraxas-365/hirekit/pkg/kernel"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline"
	"github.com/Abraxas-365/hirekit/recruitment/pipeline/pipelinesrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for hiring process operations
type Handlers struct {
	service *pipelinesrv.PipelineService
}

// NewHandlers creates a new pipeline handlers instance
func NewHandlers(service *pipelinesrv.PipelineService) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateProcess opens a hiring process for a job
// POST /api/pipelines
func (h *Handlers) CreateProcess(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	var req pipeline.CreateHiringProcessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.CreateProcess(c.Context(), *authContext.UserID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(process)
}

// ListProcesses lists the caller's hiring processes
// GET /api/pipelines?job_id=&status=&page=&page_size=
func (h *Handlers) ListProcesses(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return auth.ErrMissingCredentials()
	}

	filter := pipeline.ListFilter{
		JobID:  kernel.JobID(c.Query("job_id")),
		Status: pipeline.Status(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return pipeline.ErrValidationFailed().WithDetail("status", string(filter.Status))
	}

	processes, err := h.service.ListProcesses(c.Context(), *authContext.UserID, filter, httpx.ParsePaginationOptions(c))
	if err != nil {
		return err
	}

	return c.JSON(processes)
}

// GetProcess retrieves a hiring process by ID
// GET /api/pipelines/:id
func (h *Handlers) GetProcess(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	process, err := h.service.GetProcess(c.Context(), id, *authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// UpdateProcess patches descriptive fields
// PATCH /api/pipelines/:id
func (h *Handlers) UpdateProcess(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.UpdateHiringProcessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.UpdateDetails(c.Context(), id, *authContext.UserID, req)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// DeleteProcess deletes a hiring process
// DELETE /api/pipelines/:id
func (h *Handlers) DeleteProcess(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProcess(c.Context(), id, *authContext.UserID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AdvanceStage moves a process to a declared stage
// POST /api/pipelines/:id/stage
func (h *Handlers) AdvanceStage(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.AdvanceStageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.AdvanceStage(c.Context(), id, *authContext.UserID, req.Stage)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// UpdateStatus changes the process status
// POST /api/pipelines/:id/status
func (h *Handlers) UpdateStatus(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.UpdateStatus(c.Context(), id, *authContext.UserID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// GetTransitions lists the statuses reachable from the current one
// GET /api/pipelines/:id/transitions
func (h *Handlers) GetTransitions(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	transitions, err := h.service.AllowedTransitions(c.Context(), id, *authContext.UserID)
	if err != nil {
		return err
	}

	return c.JSON(transitions)
}

// AddCandidates adds candidates to a process
// POST /api/pipelines/:id/candidates
func (h *Handlers) AddCandidates(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.AddCandidatesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.AddCandidates(c.Context(), id, *authContext.UserID, req.CandidateIDs)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// AddInterviewers adds interviewers to a process
// POST /api/pipelines/:id/interviewers
func (h *Handlers) AddInterviewers(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.AddInterviewersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.AddInterviewers(c.Context(), id, *authContext.UserID, req.InterviewerIDs)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// SetSchedule sets the start and end dates
// PUT /api/pipelines/:id/schedule
func (h *Handlers) SetSchedule(c *fiber.Ctx) error {
	authContext, id, err := requestTarget(c)
	if err != nil {
		return err
	}

	var req pipeline.SetScheduleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	process, err := h.service.SetSchedule(c.Context(), id, *authContext.UserID, req.StartDate, req.EndDate)
	if err != nil {
		return err
	}

	return c.JSON(process)
}

// ============================================================================
// Helpers
// ============================================================================

func requestTarget(c *fiber.Ctx) (*auth.AuthContext, kernel.HiringProcessID, error) {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return nil, "", auth.ErrMissingCredentials()
	}

	id := kernel.HiringProcessID(c.Params("id"))
	if id.IsEmpty() {
		return nil, "", pipeline.ErrNotFound().WithDetail("id", "missing or empty")
	}
	return authContext, id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return pipeline.ErrValidationFailed().WithDetail("parse_error", err.Error())
	}
	if fields := httpx.ValidateStruct(out); fields != nil {
		return pipeline.ErrValidationFailed().WithDetail("fields", fields)
	}
	return nil
}

// RegisterRoutes registers all hiring process routes
func RegisterRoutes(app *fiber.App, handlers *Handlers, authMiddleware *auth.UnifiedAuthMiddleware) {
	api := app.Group("/api/pipelines", authMiddleware.Authenticate())

	api.Get("/",
		authMiddleware.RequireScope(auth.ScopePipelinesRead),
		handlers.ListProcesses,
	)

	api.Post("/",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.CreateProcess,
	)

	api.Get("/:id",
		authMiddleware.RequireScope(auth.ScopePipelinesRead),
		handlers.GetProcess,
	)

	api.Patch("/:id",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.UpdateProcess,
	)

	api.Delete("/:id",
		authMiddleware.RequireScope(auth.ScopePipelinesDelete),
		handlers.DeleteProcess,
	)

	api.Get("/:id/transitions",
		authMiddleware.RequireScope(auth.ScopePipelinesRead),
		handlers.GetTransitions,
	)

	api.Post("/:id/stage",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.AdvanceStage,
	)

	api.Post("/:id/status",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.UpdateStatus,
	)

	api.Post("/:id/candidates",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.AddCandidates,
	)

	api.Post("/:id/interviewers",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.AddInterviewers,
	)

	api.Put("/:id/schedule",
		authMiddleware.RequireScope(auth.ScopePipelinesWrite),
		handlers.SetSchedule,
	)
}
