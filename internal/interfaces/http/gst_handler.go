package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-billing-api/internal/application/gst"
)

// GSTHandler consulta de contribuyentes por GSTIN.
type GSTHandler struct {
	uc *gst.LookupUseCase
}

func NewGSTHandler(uc *gst.LookupUseCase) *GSTHandler {
	return &GSTHandler{uc: uc}
}

// Get GET /api/gst/:gstNumber
func (h *GSTHandler) Get(c *fiber.Ctx) error {
	details, err := h.uc.Get(c.UserContext(), c.Params("gstNumber"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(details)
}
