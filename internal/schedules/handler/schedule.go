package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"slotbook/internal/schedules/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(svc service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: svc,
		log:     log,
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/providers/:id/availability-rules", h.CreateRule)
	router.GET("/api/v1/providers/:id/availability-rules", h.ListRules)
	router.PUT("/api/v1/providers/:id/availability-rules/:ruleId", h.UpdateRule)
	router.DELETE("/api/v1/providers/:id/availability-rules/:ruleId", h.DeleteRule)

	router.POST("/api/v1/providers/:id/blocked-intervals", h.CreateInterval)
	router.GET("/api/v1/providers/:id/blocked-intervals", h.ListIntervals)
	router.DELETE("/api/v1/providers/:id/blocked-intervals/:intervalId", h.DeleteInterval)
}

func (h *ScheduleHandler) CreateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var rule model.AvailabilityRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateRule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	rule.ProviderID = ps.ByName("id")

	if err := h.service.CreateRule(r.Context(), &rule); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, rule); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRule", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) ListRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rules, err := h.service.ListRules(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListRules", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rules); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRules", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) UpdateRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AvailabilityRuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateRule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateRule(r.Context(), ps.ByName("ruleId"), ps.ByName("id"), &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) DeleteRule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteRule(r.Context(), ps.ByName("ruleId"), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteRule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) CreateInterval(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var interval model.BlockedInterval
	if err := json.NewDecoder(r.Body).Decode(&interval); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateInterval", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	interval.ProviderID = ps.ByName("id")

	if err := h.service.CreateInterval(r.Context(), &interval); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateInterval", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, interval); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateInterval", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) ListIntervals(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	intervals, err := h.service.ListIntervals(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListIntervals", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, intervals); err != nil {
		h.log.Error("failed to write success response", "handler", "ListIntervals", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) DeleteInterval(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteInterval(r.Context(), ps.ByName("intervalId"), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteInterval", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}
