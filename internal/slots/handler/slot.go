package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/slots/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(svc service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: svc,
		log:     log,
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/slots", h.GetSlots)
}

// GetSlots serves GET /api/v1/slots?provider_id=&service_id=&date=&timezone=.
// The timezone parameter is optional and defaults to the provider's zone.
func (h *SlotHandler) GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	schedule, err := h.service.GenerateSlots(
		r.Context(),
		query.Get("provider_id"),
		query.Get("service_id"),
		query.Get("date"),
		query.Get("timezone"),
	)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "operation", "WriteSuccess", "error", err)
	}
}
