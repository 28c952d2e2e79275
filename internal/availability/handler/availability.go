package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sanchez188/serviProf/internal/availability/service"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	httputil "github.com/sanchez188/serviProf/pkg/http"
	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

// requireProfessional ensures the caller is the professional named in the
// route. Clients and other professionals cannot touch someone's calendar.
func (h *AvailabilityHandler) requireProfessional(w http.ResponseWriter, r *http.Request, professionalID string) bool {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return false
	}
	if actor.Role != model.RoleProfessional || actor.ID != professionalID {
		httputil.WriteError(w, apperrors.Forbidden("Only the owning professional can manage this availability"))
		return false
	}
	return true
}

func (h *AvailabilityHandler) SetWeeklyRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")
	if !h.requireProfessional(w, r, professionalID) {
		return
	}

	var rules []*model.AvailabilityRule
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.SetWeeklyAvailability(r.Context(), professionalID, rules); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, rules)
}

func (h *AvailabilityHandler) GetWeeklyRules(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")

	rules, err := h.service.GetWeeklyAvailability(r.Context(), professionalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, rules)
}

func (h *AvailabilityHandler) BlockSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")
	if !h.requireProfessional(w, r, professionalID) {
		return
	}

	var req model.BlockSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	slot, err := h.service.BlockSlot(r.Context(), professionalID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, slot)
}

func (h *AvailabilityHandler) UnblockSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")
	slotID := ps.ByName("slotId")
	if !h.requireProfessional(w, r, professionalID) {
		return
	}

	if err := h.service.UnblockSlot(r.Context(), professionalID, slotID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) ListBlockedSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")
	if !h.requireProfessional(w, r, professionalID) {
		return
	}

	slots, err := h.service.ListBlockedSlots(r.Context(), professionalID, r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

// ListAvailableSlots is the public search endpoint clients call when
// picking a time; no actor headers required.
func (h *AvailabilityHandler) ListAvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	professionalID := ps.ByName("id")
	query := r.URL.Query()

	date := query.Get("date")
	if date == "" {
		httputil.WriteError(w, apperrors.InvalidInput("'date' query parameter is required"))
		return
	}

	hours := 1
	if hoursStr := query.Get("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil {
			httputil.WriteError(w, apperrors.InvalidInput("invalid hours parameter: "+hoursStr))
			return
		}
		hours = parsed
	}

	slots, err := h.service.ListAvailableSlots(r.Context(), professionalID, date, hours)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/availability/professionals/:id/rules", h.SetWeeklyRules)
	router.GET("/api/v1/availability/professionals/:id/rules", h.GetWeeklyRules)
	router.POST("/api/v1/availability/professionals/:id/blocks", h.BlockSlot)
	router.GET("/api/v1/availability/professionals/:id/blocks", h.ListBlockedSlots)
	router.DELETE("/api/v1/availability/professionals/:id/blocks/:slotId", h.UnblockSlot)
	router.GET("/api/v1/availability/professionals/:id/slots", h.ListAvailableSlots)
}
