package handler

import (
	"errors"
	"net/http"

	"github.com/Ro-otman/vroomvtr/internal/service"
	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orders  service.OrderService
	refunds service.RefundService
}

func NewOrderHandler(orders service.OrderService, refunds service.RefundService) *OrderHandler {
	return &OrderHandler{orders: orders, refunds: refunds}
}

type ReserveRequest struct {
	CarID           string  `json:"carId"`
	Country         string  `json:"country"`
	City            string  `json:"city"`
	Address         string  `json:"address"`
	PostalCode      string  `json:"postalCode"`
	PaymentMethod   string  `json:"paymentMethod"`
	PaymentProofURL *string `json:"paymentProofUrl"`
}

func (h *OrderHandler) Reserve(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	order, err := h.orders.Reserve(c.Request().Context(), uid, service.ReserveInput{
		CarID:           req.CarID,
		Country:         req.Country,
		City:            req.City,
		Address:         req.Address,
		PostalCode:      req.PostalCode,
		PaymentMethod:   req.PaymentMethod,
		PaymentProofURL: req.PaymentProofURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyReserved):
			return c.JSON(http.StatusConflict, NewErrorResponse("already_reserved", "a pending order already exists for this car"))
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "car not found"))
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "carId and paymentMethod are required"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create order"))
		}
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Current(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	order, err := h.orders.Current(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no pending order"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch order"))
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Confirm(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}
	err := h.orders.Confirm(c.Request().Context(), orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderUnavailable) {
			return c.Redirect(http.StatusFound, "/?order_unavailable=1")
		}
		c.Logger().Errorf("order confirm: %v", err)
		return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
	}
	return c.Redirect(http.StatusFound, "/?order_confirmed=1")
}

func (h *OrderHandler) RefundState(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}
	state, err := h.refunds.State(c.Request().Context(), orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderUnavailable) {
			return c.JSON(http.StatusNotFound, stepResponse{OK: false, Message: "Order not found or already processed."})
		}
		c.Logger().Errorf("refund state: %v", err)
		return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrderHandler) RefundStep1(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}

	ev := service.Step1Evidence{
		FullName:      c.FormValue("refund_full_name"),
		Phone:         c.FormValue("refund_phone"),
		Email:         c.FormValue("refund_email"),
		OrderDate:     c.FormValue("refund_order_date"),
		AmountPaid:    c.FormValue("refund_amount_paid"),
		PaymentMethod: c.FormValue("refund_payment_method"),
	}
	if _, err := c.FormFile("payment_screenshot"); err == nil {
		ev.HasPaymentShot = true
	}
	if ev.FullName == "" || ev.Phone == "" || ev.Email == "" ||
		ev.OrderDate == "" || ev.AmountPaid == "" || ev.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 1: all fields are required."})
	}
	if !ev.HasPaymentShot {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 1: payment screenshot required."})
	}

	if err := h.refunds.SubmitStep1(c.Request().Context(), orderID, uid, ev); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderUnavailable):
			return c.JSON(http.StatusNotFound, stepResponse{OK: false, Message: "Order not found or already processed."})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 1: invalid email address."})
		default:
			c.Logger().Errorf("refund step1: %v", err)
			return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
		}
	}
	return c.JSON(http.StatusOK, stepResponse{OK: true, Message: "Step 1 validated. Continue to step 2."})
}

func (h *OrderHandler) RefundStep2(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}

	ev := service.Step2Evidence{
		IBAN:          c.FormValue("refund_iban_step2"),
		AccountHolder: c.FormValue("refund_account_holder_step2"),
	}
	if _, err := c.FormFile("id_photo_front_step2"); err == nil {
		ev.HasIDFront = true
	}
	if _, err := c.FormFile("id_photo_back_step2"); err == nil {
		ev.HasIDBack = true
	}
	if !ev.HasIDFront || !ev.HasIDBack {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 2: front and back ID photos required."})
	}
	if ev.IBAN == "" || ev.AccountHolder == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 2: bank details to receive the refund required."})
	}

	if err := h.refunds.SubmitStep2(c.Request().Context(), orderID, uid, ev); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderUnavailable):
			return c.JSON(http.StatusNotFound, stepResponse{OK: false, Message: "Order not found or already processed."})
		case errors.Is(err, service.ErrInvalidState):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Validate step 1 first."})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 2: all fields are required."})
		default:
			c.Logger().Errorf("refund step2: %v", err)
			return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
		}
	}
	return c.JSON(http.StatusOK, stepResponse{OK: true, Message: "Step 2 validated. Contact support to receive code #1."})
}

type step3Request struct {
	Code string `json:"verification_code_step3" form:"verification_code_step3"`
}

type step4Request struct {
	Code string `json:"verification_code_step4" form:"verification_code_step4"`
}

func (h *OrderHandler) RefundStep3(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}
	var req step3Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}

	if err := h.refunds.SubmitStep3(c.Request().Context(), orderID, uid, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderUnavailable):
			return c.JSON(http.StatusNotFound, stepResponse{OK: false, Message: "Order not found or already processed."})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 3: invalid verification code."})
		case errors.Is(err, service.ErrInvalidState):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Validate step 2 first."})
		case errors.Is(err, service.ErrInvalidCode):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 3: incorrect code."})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Verification codes unavailable."})
		default:
			c.Logger().Errorf("refund step3: %v", err)
			return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
		}
	}
	return c.JSON(http.StatusOK, stepResponse{OK: true, Message: "Step 3 validated. Ask the administrator for code #2."})
}

func (h *OrderHandler) RefundStep4(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}
	var req step4Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}

	if err := h.refunds.SubmitStep4(c.Request().Context(), orderID, uid, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderUnavailable):
			return c.JSON(http.StatusNotFound, stepResponse{OK: false, Message: "Order not found or already processed."})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 4: invalid verification code."})
		case errors.Is(err, service.ErrInvalidState):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Validate step 3 first."})
		case errors.Is(err, service.ErrCodeNotReady):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Code #2 not generated. Validate step 3 first."})
		case errors.Is(err, service.ErrInvalidCode):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Step 4: incorrect code."})
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Verification codes unavailable."})
		default:
			c.Logger().Errorf("refund step4: %v", err)
			return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
		}
	}
	return c.JSON(http.StatusOK, stepResponse{OK: true, Message: "Step 4 validated. Ask the administrator for code #3."})
}

func (h *OrderHandler) RefundFinal(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID := c.Param("orderId")
	if uid == "" || orderID == "" {
		return c.JSON(http.StatusBadRequest, stepResponse{OK: false, Message: "Invalid request"})
	}

	failures, err := h.refunds.Finalize(
		c.Request().Context(),
		orderID,
		uid,
		c.FormValue("verification_code_step3"),
		c.FormValue("verification_code_step4"),
		c.FormValue("verification_code_step5"),
	)
	if err != nil {
		if errors.Is(err, service.ErrOrderUnavailable) {
			return c.JSON(http.StatusNotFound, finalFailureResponse{
				OK:      false,
				Message: "Order not found or already processed.",
				Errors:  []string{"Order not found or already processed."},
			})
		}
		c.Logger().Errorf("refund final: %v", err)
		return c.JSON(http.StatusInternalServerError, stepResponse{OK: false, Message: "Server error"})
	}
	if len(failures) > 0 {
		return c.JSON(http.StatusBadRequest, finalFailureResponse{
			OK:      false,
			Message: "Refund validation failed.",
			Errors:  failures,
		})
	}

	back := c.Request().Referer()
	if back == "" {
		back = "/"
	}
	return c.Redirect(http.StatusFound, back)
}
