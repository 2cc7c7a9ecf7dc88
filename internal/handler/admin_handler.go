package handler

import (
	"net/http"

	"github.com/Ro-otman/vroomvtr/internal/service"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	orders service.OrderService
	codes  service.VerificationCodeStore
}

func NewAdminHandler(orders service.OrderService, codes service.VerificationCodeStore) *AdminHandler {
	return &AdminHandler{orders: orders, codes: codes}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	rows, err := h.orders.ListForAdmin(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *AdminHandler) ListVerificationCodes(c echo.Context) error {
	rows, err := h.codes.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch verification codes"))
	}
	return c.JSON(http.StatusOK, rows)
}

// RegenerateCodes resets an order's code set to a fresh code1 so an operator
// can restart a stuck refund flow.
func (h *AdminHandler) RegenerateCodes(c echo.Context) error {
	orderID := c.Param("orderId")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "missing order id"))
	}
	set, err := h.codes.Regenerate(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to regenerate codes"))
	}
	return c.JSON(http.StatusOK, set)
}
