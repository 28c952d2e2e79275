package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "github.com/sanchez188/serviProf/internal/bookings/errors"
	"github.com/sanchez188/serviProf/internal/bookings/repository"
	"github.com/sanchez188/serviProf/internal/bookings/validator"
	"github.com/sanchez188/serviProf/pkg/config"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/events"
	"github.com/sanchez188/serviProf/pkg/model"
	"github.com/sanchez188/serviProf/pkg/timerange"

	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityGate is the slice of the availability domain bookings
// depend on. The calls accept a session context so the final occupancy
// check and the block write join the booking transaction.
type AvailabilityGate interface {
	IsRangeAvailable(ctx context.Context, professionalID string, date string, startTime string, endTime string) (bool, error)
	BlockForBooking(ctx context.Context, booking *model.Booking) error
	UnblockForBooking(ctx context.Context, bookingID string) error
}

// PriceSource resolves the price a booking pays, frozen at creation.
type PriceSource interface {
	Quote(ctx context.Context, serviceID string, hours int) (*model.Service, float64, error)
	ApplyReview(ctx context.Context, serviceID string, rating int) error
}

// EventPublisher emits booking lifecycle events. Publish failures are
// logged and swallowed; the state change already committed.
type EventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	ListByClient(ctx context.Context, actor model.Actor, clientID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByProfessional(ctx context.Context, actor model.Actor, professionalID string, limit int, offset int64) ([]*model.Booking, int64, error)

	Accept(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	Reject(ctx context.Context, actor model.Actor, id string, reason string) (*model.Booking, error)
	Start(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	Complete(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)

	AttachReview(ctx context.Context, actor model.Actor, bookingID string, req *model.ReviewRequest) (*model.Review, error)
	ListReviewsByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, int64, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	reviews      repository.ReviewRepository
	locks        repository.SlotLockRepository
	availability AvailabilityGate
	catalog      PriceSource
	publisher    EventPublisher
	validator    *validator.BookingValidator
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	reviews repository.ReviewRepository,
	locks repository.SlotLockRepository,
	availability AvailabilityGate,
	catalog PriceSource,
	publisher EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		reviews:      reviews,
		locks:        locks,
		availability: availability,
		catalog:      catalog,
		publisher:    publisher,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if actor.Role != model.RoleClient {
		return nil, apperrors.Forbidden("Only clients can create bookings")
	}
	req.ClientID = actor.ID

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "client_id", actor.ID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	svc, price, err := s.catalog.Quote(ctx, req.ServiceID, req.Hours)
	if err != nil {
		return nil, err
	}

	start, err := timerange.Parse(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidInput("start_time must be in HH:MM format")
	}
	end, err := timerange.ComputeEnd(start, req.Hours)
	if err != nil {
		return nil, apperrors.Validation("Booking cannot extend past midnight", nil)
	}

	booking := &model.Booking{
		ClientID:       req.ClientID,
		ProfessionalID: svc.ProfessionalID,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		StartTime:      start.String(),
		EndTime:        end.String(),
		Hours:          req.Hours,
		TotalPrice:     price,
		Status:         model.StatusPending,
		Description:    req.Description,
	}

	if booking.ClientID == booking.ProfessionalID {
		return nil, apperrors.Validation("Professionals cannot book their own services", nil)
	}

	// Advisory lock narrows the race window before the transactional
	// re-check; contention on the exact same start surfaces immediately.
	lockKey := repository.LockKey(booking.ProfessionalID, booking.Date, booking.StartTime)
	if err := s.locks.Acquire(ctx, lockKey, s.cfg.SlotLockTTL); err != nil {
		if errors.Is(err, bookingerrors.ErrSlotLocked) {
			return nil, apperrors.SlotUnavailable("Another booking for this slot is in progress")
		}
		return nil, apperrors.Internal("Failed to lock slot", err)
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), lockKey); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "key", lockKey, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		available, err := s.availability.IsRangeAvailable(sessCtx, booking.ProfessionalID, booking.Date, booking.StartTime, booking.EndTime)
		if err != nil {
			return err
		}
		if !available {
			return apperrors.SlotUnavailable("The requested time range is not available")
		}

		overlapping, err := s.repo.FindActiveOverlapping(sessCtx, booking.ProfessionalID, booking.Date, booking.StartTime, booking.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if len(overlapping) > 0 {
			return apperrors.SlotUnavailable("The requested time range is already booked")
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		return s.availability.BlockForBooking(sessCtx, booking)
	})
	if err != nil {
		s.cfg.Log.Warn("Booking creation failed",
			"client_id", booking.ClientID,
			"professional_id", booking.ProfessionalID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"client_id", booking.ClientID,
		"professional_id", booking.ProfessionalID,
		"date", booking.Date,
		"start_time", booking.StartTime,
	)
	s.publish(ctx, events.EventBookingCreated, booking, "", 0)

	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isParty(actor, booking) {
		return nil, apperrors.Forbidden("Only the booking parties can view this booking")
	}

	return booking, nil
}

func (s *bookingService) ListByClient(ctx context.Context, actor model.Actor, clientID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor.Role != model.RoleClient || actor.ID != clientID {
		return nil, 0, apperrors.Forbidden("Clients can only list their own bookings")
	}

	bookings, err := s.repo.FindByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	count, err := s.repo.CountByClient(ctx, clientID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) ListByProfessional(ctx context.Context, actor model.Actor, professionalID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor.Role != model.RoleProfessional || actor.ID != professionalID {
		return nil, 0, apperrors.Forbidden("Professionals can only list their own bookings")
	}

	bookings, err := s.repo.FindByProfessional(ctx, professionalID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	count, err := s.repo.CountByProfessional(ctx, professionalID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) Accept(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	now := time.Now().UTC()
	return s.transitionAsProfessional(ctx, actor, id, model.StatusAccepted, repository.StatusUpdate{AcceptedAt: &now}, events.EventBookingAccepted, "")
}

func (s *bookingService) Reject(ctx context.Context, actor model.Actor, id string, reason string) (*model.Booking, error) {
	now := time.Now().UTC()
	update := repository.StatusUpdate{RejectedAt: &now, RejectionReason: reason}
	return s.transitionAsProfessional(ctx, actor, id, model.StatusRejected, update, events.EventBookingRejected, reason)
}

func (s *bookingService) Start(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return s.transitionAsProfessional(ctx, actor, id, model.StatusInProgress, repository.StatusUpdate{}, events.EventBookingStarted, "")
}

func (s *bookingService) Complete(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	now := time.Now().UTC()
	return s.transitionAsProfessional(ctx, actor, id, model.StatusCompleted, repository.StatusUpdate{CompletedAt: &now}, events.EventBookingCompleted, "")
}

// transitionAsProfessional handles the professional-driven lifecycle
// moves. Rejection also releases the blocked range.
func (s *bookingService) transitionAsProfessional(
	ctx context.Context,
	actor model.Actor,
	id string,
	next model.BookingStatus,
	update repository.StatusUpdate,
	eventType string,
	reason string,
) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleProfessional || actor.ID != booking.ProfessionalID {
		return nil, apperrors.Forbidden("Only the booked professional can perform this action")
	}

	if !booking.Status.CanTransition(next) {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot transition booking from %s to %s", booking.Status, next))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, booking.Status, next, update); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusChanged) {
				return apperrors.InvalidState(fmt.Sprintf("Cannot transition booking from %s to %s", booking.Status, next))
			}
			return apperrors.Internal("Failed to update booking status", err)
		}
		if next == model.StatusRejected {
			return s.availability.UnblockForBooking(sessCtx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	booking.Status = next
	booking.AcceptedAt = pickTime(booking.AcceptedAt, update.AcceptedAt)
	booking.RejectedAt = pickTime(booking.RejectedAt, update.RejectedAt)
	booking.CompletedAt = pickTime(booking.CompletedAt, update.CompletedAt)
	if update.RejectionReason != "" {
		booking.RejectionReason = update.RejectionReason
	}

	s.cfg.Log.Info("Booking status changed", "id", id, "status", next)
	s.publish(ctx, eventType, booking, reason, 0)

	return booking, nil
}

// Cancel is open to either party while the booking is non-terminal.
func (s *bookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isParty(actor, booking) {
		return nil, apperrors.Forbidden("Only the booking parties can cancel this booking")
	}

	if !booking.Status.CanTransition(model.StatusCancelled) {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot cancel a %s booking", booking.Status))
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, booking.Status, model.StatusCancelled, repository.StatusUpdate{}); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusChanged) {
				return apperrors.InvalidState(fmt.Sprintf("Cannot cancel a booking that is no longer %s", booking.Status))
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}
		return s.availability.UnblockForBooking(sessCtx, id)
	})
	if err != nil {
		return nil, err
	}

	booking.Status = model.StatusCancelled

	s.cfg.Log.Info("Booking cancelled", "id", id, "actor_role", actor.Role)
	s.publish(ctx, events.EventBookingCancelled, booking, "", 0)

	return booking, nil
}

func (s *bookingService) AttachReview(ctx context.Context, actor model.Actor, bookingID string, req *model.ReviewRequest) (*model.Review, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleClient || actor.ID != booking.ClientID {
		return nil, apperrors.Forbidden("Only the booking client can leave a review")
	}
	if booking.Status != model.StatusCompleted {
		return nil, apperrors.InvalidState(fmt.Sprintf("Only completed bookings can be reviewed, booking is %s", booking.Status))
	}
	if booking.ReviewID != "" {
		return nil, apperrors.Conflict("Booking already has a review")
	}

	if err := s.validator.ValidateReview(req); err != nil {
		return nil, apperrors.Validation("Review validation failed", map[string]any{"error": err.Error()})
	}

	review := &model.Review{
		BookingID:      booking.ID,
		ClientID:       booking.ClientID,
		ProfessionalID: booking.ProfessionalID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.reviews.Create(sessCtx, review); err != nil {
			if errors.Is(err, bookingerrors.ErrReviewExists) {
				return apperrors.Conflict("Booking already has a review")
			}
			return apperrors.Internal("Failed to create review", err)
		}
		if err := s.repo.UpdateStatus(sessCtx, booking.ID, booking.Status, booking.Status, repository.StatusUpdate{ReviewID: review.ID}); err != nil {
			if errors.Is(err, bookingerrors.ErrStatusChanged) {
				return apperrors.InvalidState("Booking is no longer completed")
			}
			return apperrors.Internal("Failed to attach review to booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.catalog.ApplyReview(ctx, booking.ServiceID, req.Rating); err != nil {
		// the review itself committed; the aggregate will catch up on the
		// next one
		s.cfg.Log.Error("Failed to fold review into service rating",
			"service_id", booking.ServiceID,
			"review_id", review.ID,
			"error", err,
		)
	}

	booking.ReviewID = review.ID

	s.cfg.Log.Info("Review attached", "booking_id", booking.ID, "review_id", review.ID, "rating", req.Rating)
	s.publish(ctx, events.EventBookingReviewed, booking, "", req.Rating)

	return review, nil
}

func (s *bookingService) ListReviewsByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, int64, error) {
	if professionalID == "" {
		return nil, 0, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	reviews, err := s.reviews.FindByProfessional(ctx, professionalID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve reviews", err)
	}
	count, err := s.reviews.CountByProfessional(ctx, professionalID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count reviews", err)
	}

	return reviews, count, nil
}

// --- Helpers ---

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking, reason string, rating int) {
	if s.publisher == nil {
		return
	}

	msg := events.NewBookingMessage(eventType, "bookings", events.BookingEvent{
		BookingID:      booking.ID,
		ClientID:       booking.ClientID,
		ProfessionalID: booking.ProfessionalID,
		ServiceID:      booking.ServiceID,
		Date:           booking.Date,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Status:         string(booking.Status),
		Reason:         reason,
		Rating:         rating,
		OccurredAt:     time.Now().UTC(),
	})

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func isParty(actor model.Actor, booking *model.Booking) bool {
	switch actor.Role {
	case model.RoleClient:
		return actor.ID == booking.ClientID
	case model.RoleProfessional:
		return actor.ID == booking.ProfessionalID
	default:
		return false
	}
}

func pickTime(current, update *time.Time) *time.Time {
	if update != nil {
		return update
	}
	return current
}
