package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ds124wfegd/voucher-reminder/internal/entity"
	"github.com/ds124wfegd/voucher-reminder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type ReminderHandler struct {
	reminderService service.ReminderService
	sweepTimeout    time.Duration
}

// NewReminderHandler builds the handler; sweepTimeout bounds a manual sweep,
// zero leaves it unbounded.
func NewReminderHandler(reminderService service.ReminderService, sweepTimeout time.Duration) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, sweepTimeout: sweepTimeout}
}

// RunReminders runs one sweep synchronously and reports its summary. The
// sweep is detached from the request so a client disconnect does not cut it
// short.
func (h *ReminderHandler) RunReminders(c *gin.Context) {
	logrus.Info("Manual reminder sweep requested")

	ctx := context.WithoutCancel(c.Request.Context())
	if h.sweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.sweepTimeout)
		defer cancel()
	}

	summary, err := h.reminderService.RunSweep(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Message: "Reminder sweep failed",
			Error:   err.Error(),
		})
		return
	}

	message := "Reminder sweep completed: "
	if summary.Interrupted() {
		message = "Reminder sweep interrupted: "
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: message + summary.String(),
		Data:    summary,
	})
}

// PreviewVoucher reports what the policy decides for one voucher right now.
func (h *ReminderHandler) PreviewVoucher(c *gin.Context) {
	preview, err := h.reminderService.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, entity.ErrVoucherNotFound):
			status = http.StatusNotFound
		case errors.Is(err, entity.ErrInvalidInput):
			status = http.StatusBadRequest
		}

		c.JSON(status, ErrorResponse{
			Success: false,
			Message: "Failed to preview voucher reminder",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Reminder decision computed",
		Data:    preview,
	})
}
