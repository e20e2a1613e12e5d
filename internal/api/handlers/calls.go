package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/domain"
	callsvc "github.com/acme/vapi-caller/internal/service/call"
)

const idempotencyHeader = "Idempotency-Key"

type startCallRequest struct {
	AssistantID    string            `json:"assistant_id"`
	PhoneNumberID  string            `json:"phone_number_id"`
	CustomerNumber string            `json:"customer_number"`
	ListingName    string            `json:"listing_name"`
	ListingAddress string            `json:"listing_address"`
	Questions      []string          `json:"questions"`
	Variables      map[string]string `json:"variables"`
}

type replayedCallResponse struct {
	ID       string `json:"id"`
	Replayed bool   `json:"replayed"`
}

func (h *HandlerSet) startCall(ctx *fiber.Ctx) error {
	var req startCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}

	input := callsvc.StartCallInput{
		AssistantID:    req.AssistantID,
		PhoneNumberID:  req.PhoneNumberID,
		CustomerNumber: req.CustomerNumber,
		ListingName:    req.ListingName,
		ListingAddress: req.ListingAddress,
		Questions:      req.Questions,
		Variables:      req.Variables,
	}
	if _, err := h.calls.PrepareCall(input); err != nil {
		return translateError(err)
	}

	userCtx := ctx.UserContext()
	key := ctx.Get(idempotencyHeader)
	if key != "" && h.guard != nil {
		reservation, err := h.guard.Reserve(userCtx, key)
		if err != nil {
			return translateError(err)
		}
		if !reservation.Claimed {
			return ctx.Status(http.StatusOK).JSON(replayedCallResponse{ID: reservation.CallID, Replayed: true})
		}
	}

	result, err := h.calls.StartCall(userCtx, input)
	if err != nil {
		if key != "" && h.guard != nil {
			if relErr := h.guard.Release(userCtx, key); relErr != nil {
				h.logger.Warn("start call: release idempotency key", zap.Error(relErr))
			}
		}
		return upstreamError(ctx, err)
	}

	if key != "" && h.guard != nil {
		if err := h.guard.Complete(userCtx, key, result.Value.ID); err != nil {
			h.logger.Warn("start call: complete idempotency key", zap.String("call_id", result.Value.ID), zap.Error(err))
		}
	}

	if ctx.QueryBool("wait") {
		waited, err := h.calls.WaitForCall(userCtx, result.Value.ID, waitOptions(ctx))
		if err != nil {
			return upstreamError(ctx, err)
		}
		return respondWait(ctx, waited)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(http.StatusCreated).Send(result.Raw)
}

func (h *HandlerSet) getCallSummary(ctx *fiber.Ctx) error {
	summary, err := h.calls.GetCallSummary(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return upstreamError(ctx, err)
	}

	status := http.StatusOK
	if summary.HTTPStatus >= http.StatusBadRequest {
		status = summary.HTTPStatus
	}
	return ctx.Status(status).JSON(summary)
}

func (h *HandlerSet) waitForCall(ctx *fiber.Ctx) error {
	waited, err := h.calls.WaitForCall(ctx.UserContext(), ctx.Params("id"), waitOptions(ctx))
	if err != nil {
		return upstreamError(ctx, err)
	}
	return respondWait(ctx, waited)
}

func waitOptions(ctx *fiber.Ctx) callsvc.WaitOptions {
	return callsvc.WaitOptions{
		Interval: time.Duration(ctx.QueryInt("intervalMs", 0)) * time.Millisecond,
		Timeout:  time.Duration(ctx.QueryInt("timeoutMs", 0)) * time.Millisecond,
	}
}

func respondWait(ctx *fiber.Ctx, res *domain.WaitResult) error {
	status := http.StatusOK
	if res.TimedOut {
		status = http.StatusAccepted
	}
	return ctx.Status(status).JSON(res)
}
