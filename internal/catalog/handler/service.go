package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sanchez188/serviProf/internal/catalog/repository"
	"github.com/sanchez188/serviProf/internal/catalog/service"
	httputil "github.com/sanchez188/serviProf/pkg/http"
	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ServiceHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewServiceHandler(service service.CatalogService, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		log:     log,
	}
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), actor, &svc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, svc)
}

func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, svc)
}

// List is the public marketplace search: category, location and tag
// filters, active services only.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := r.URL.Query()
	filter := repository.ServiceFilter{
		CategoryID: query.Get("category_id"),
		Location:   query.Get("location"),
		Tag:        query.Get("tag"),
		ActiveOnly: true,
	}

	services, count, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, services, count, limit, offset)
}

func (h *ServiceHandler) ListByProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	services, count, err := h.service.ListByProfessional(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, services, count, limit, offset)
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var updates model.ServiceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	svc, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, svc)
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/services", h.Create)
	router.GET("/api/v1/services", h.List)
	router.GET("/api/v1/services/:id", h.GetByID)
	router.PATCH("/api/v1/services/:id", h.Update)
	router.DELETE("/api/v1/services/:id", h.Delete)
	router.GET("/api/v1/professionals/:id/services", h.ListByProfessional)
}