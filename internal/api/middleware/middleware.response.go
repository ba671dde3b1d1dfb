package middleware

import (
	basehdl "film_camp/internal/api/base/handler"

	"github.com/gofiber/fiber/v3"
)

// HandleErrorResponse ghi error response theo định dạng chung và dừng chuỗi middleware
func HandleErrorResponse(c fiber.Ctx, err error) error {
	basehdl.WriteError(c, err)
	return nil
}
