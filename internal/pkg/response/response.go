// Package response writes the JSON envelope every skill-match endpoint
// answers with: an HTTP status echoed in the body, a short message and the
// payload.
package response

import "github.com/gofiber/fiber/v3"

type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessagePartial             = "partial results, scoring deadline reached"
	MessageNoCandidates        = "no active candidates"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageTooManyRequests     = "too many requests"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

// ResultMessage picks the message of a 200 answer carrying ranked results.
// A partial pass wins over an empty corpus.
func ResultMessage(partial, empty bool) string {
	switch {
	case partial:
		return MessagePartial
	case empty:
		return MessageNoCandidates
	default:
		return MessageOK
	}
}

// DefaultMessage is the message used when a caller leaves it blank.
func DefaultMessage(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	case fiber.StatusTooManyRequests:
		return MessageTooManyRequests
	case fiber.StatusServiceUnavailable:
		return MessageServiceUnavailable
	}
	if status >= 500 {
		return MessageInternalServerError
	}
	return MessageError
}

func write(c fiber.Ctx, status int, message string, data any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	return c.Status(status).JSON(Envelope{Status: status, Message: message, Data: data})
}
