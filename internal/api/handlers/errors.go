package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/acme/vapi-caller/internal/vapi"
	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case apperrors.Is(err, apperrors.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "resource not found")
	case apperrors.Is(err, apperrors.ErrConflict):
		return fiber.NewError(http.StatusConflict, err.Error())
	case apperrors.Is(err, apperrors.ErrUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	case apperrors.Is(err, apperrors.ErrTransport), apperrors.Is(err, apperrors.ErrDecode), apperrors.Is(err, apperrors.ErrRemote):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}

// upstreamError relays remote failures with their status and body instead of
// collapsing them into a generic error.
func upstreamError(ctx *fiber.Ctx, err error) error {
	var statusErr *vapi.StatusError
	if apperrors.As(err, &statusErr) {
		return ctx.Status(statusErr.StatusCode).JSON(fiber.Map{"error": rawOrString(statusErr.Body)})
	}

	var decodeErr *vapi.DecodeError
	if apperrors.As(err, &decodeErr) {
		return ctx.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error":           err.Error(),
			"upstream_status": decodeErr.StatusCode,
			"upstream_body":   decodeErr.Body,
		})
	}

	return translateError(err)
}

func rawOrString(body string) any {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}
