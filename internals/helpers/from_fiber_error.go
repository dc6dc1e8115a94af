package helper

import "github.com/gofiber/fiber/v2"

// FromFiberError converts an error bubbled out of a transaction (usually a
// *fiber.Error) into the shared JSON envelope. Anything else falls back to a
// 500 carrying the original message.
func FromFiberError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return Error(c, fe.Code, fe.Message)
	}
	return ErrorWithDetails(c, fiber.StatusInternalServerError, "Internal server error", err.Error())
}
