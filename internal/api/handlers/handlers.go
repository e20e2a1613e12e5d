package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/domain"
	callsvc "github.com/acme/vapi-caller/internal/service/call"
	"github.com/acme/vapi-caller/internal/service/idempotency"
	"github.com/acme/vapi-caller/internal/vapi"
	"github.com/acme/vapi-caller/pkg/logger"
)

// CallService is the subset of the call service used by the handlers.
type CallService interface {
	PrepareCall(input callsvc.StartCallInput) (vapi.CreateCallRequest, error)
	StartCall(ctx context.Context, input callsvc.StartCallInput) (*vapi.Result[vapi.CallRecord], error)
	GetCallSummary(ctx context.Context, callID string) (domain.CallSummary, error)
	WaitForCall(ctx context.Context, callID string, opts callsvc.WaitOptions) (*domain.WaitResult, error)
}

// IdempotencyGuard deduplicates call creation by client-supplied key.
type IdempotencyGuard interface {
	Reserve(ctx context.Context, key string) (idempotency.Reservation, error)
	Complete(ctx context.Context, key, callID string) error
	Release(ctx context.Context, key string) error
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HandlerSet bundles all HTTP handlers.
type HandlerSet struct {
	calls  CallService
	guard  IdempotencyGuard
	logger *logger.Logger
	checks map[string]HealthCheck
}

// NewHandlerSet creates a new handler bundle. guard may be nil.
func NewHandlerSet(calls CallService, guard IdempotencyGuard, lg *logger.Logger, checks map[string]HealthCheck) *HandlerSet {
	if lg == nil {
		lg = logger.NewNop()
	}
	return &HandlerSet{calls: calls, guard: guard, logger: lg, checks: checks}
}

// Register wires all routes onto the fiber app.
func (h *HandlerSet) Register(app *fiber.App) {
	app.Get("/healthz", h.health)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	calls := v1.Group("/calls")
	calls.Post("/", h.startCall)
	calls.Get("/:id", h.getCallSummary)
	calls.Get("/:id/wait", h.waitForCall)
}

// ErrorHandler provides centralized error responses.
func (h *HandlerSet) ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()

	if fiberErr, ok := err.(*fiber.Error); ok {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		h.logger.WithContext(ctx.UserContext()).Error("request failed",
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
	}

	return ctx.Status(code).JSON(fiber.Map{"error": message})
}

func (h *HandlerSet) health(ctx *fiber.Ctx) error {
	healthCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()

	errs := make(map[string]string)
	for name, check := range h.checks {
		if err := check(healthCtx); err != nil {
			errs[name] = err.Error()
		}
	}

	status := fiber.StatusOK
	state := "ok"
	if len(errs) > 0 {
		status = fiber.StatusServiceUnavailable
		state = "degraded"
	}

	return ctx.Status(status).JSON(fiber.Map{"status": state, "errors": errs})
}
