package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sanchez188/serviProf/internal/bookings/service"
	httputil "github.com/sanchez188/serviProf/pkg/http"
	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListByClient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, func(actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
		return h.service.ListByClient(r.Context(), actor, ps.ByName("id"), limit, offset)
	})
}

func (h *BookingHandler) ListByProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, func(actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
		return h.service.ListByProfessional(r.Context(), actor, ps.ByName("id"), limit, offset)
	})
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, fetch func(actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, count, err := fetch(actor, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, count, limit, offset)
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, func(actor model.Actor, id string) (*model.Booking, error) {
		return h.service.Accept(r.Context(), actor, id)
	})
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil {
		// a missing or empty body just means no reason was given
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	booking, err := h.service.Reject(r.Context(), actor, ps.ByName("id"), body.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, func(actor model.Actor, id string) (*model.Booking, error) {
		return h.service.Start(r.Context(), actor, id)
	})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, func(actor model.Actor, id string) (*model.Booking, error) {
		return h.service.Complete(r.Context(), actor, id)
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, func(actor model.Actor, id string) (*model.Booking, error) {
		return h.service.Cancel(r.Context(), actor, id)
	})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params, apply func(actor model.Actor, id string) (*model.Booking, error)) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := apply(actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) AttachReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	review, err := h.service.AttachReview(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, review)
}

// ListReviews is public: anyone browsing a professional's profile can
// read their reviews.
func (h *BookingHandler) ListReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reviews, count, err := h.service.ListReviewsByProfessional(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, reviews, count, limit, offset)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.POST("/api/v1/bookings/:id/accept", h.Accept)
	router.POST("/api/v1/bookings/:id/reject", h.Reject)
	router.POST("/api/v1/bookings/:id/start", h.Start)
	router.POST("/api/v1/bookings/:id/complete", h.Complete)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/review", h.AttachReview)
	router.GET("/api/v1/clients/:id/bookings", h.ListByClient)
	router.GET("/api/v1/professionals/:id/bookings", h.ListByProfessional)
	router.GET("/api/v1/professionals/:id/reviews", h.ListReviews)
}
