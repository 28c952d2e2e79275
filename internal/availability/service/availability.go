package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	availerrors "github.com/sanchez188/serviProf/internal/availability/errors"
	"github.com/sanchez188/serviProf/internal/availability/repository"
	"github.com/sanchez188/serviProf/internal/availability/validator"
	"github.com/sanchez188/serviProf/pkg/config"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/model"
	"github.com/sanchez188/serviProf/pkg/timerange"

	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityService interface {
	SetWeeklyAvailability(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error
	GetWeeklyAvailability(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error)
	BlockSlot(ctx context.Context, professionalID string, req *model.BlockSlotRequest) (*model.BlockedSlot, error)
	UnblockSlot(ctx context.Context, professionalID string, slotID string) error
	ListBlockedSlots(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error)
	ListAvailableSlots(ctx context.Context, professionalID string, date string, hours int) ([]*model.AvailableSlot, error)

	// Booking-owned blocks, driven by the bookings domain. These take the
	// caller's context so they participate in its transaction.
	IsRangeAvailable(ctx context.Context, professionalID string, date string, startTime string, endTime string) (bool, error)
	BlockForBooking(ctx context.Context, booking *model.Booking) error
	UnblockForBooking(ctx context.Context, bookingID string) error
}

type availabilityService struct {
	ruleRepo    repository.AvailabilityRuleRepository
	blockedRepo repository.BlockedSlotRepository
	validator   *validator.AvailabilityValidator
	cfg         *config.Config
}

func NewAvailabilityService(
	ruleRepo repository.AvailabilityRuleRepository,
	blockedRepo repository.BlockedSlotRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		ruleRepo:    ruleRepo,
		blockedRepo: blockedRepo,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *availabilityService) SetWeeklyAvailability(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error {
	if professionalID == "" {
		return apperrors.InvalidInput("Professional ID cannot be empty")
	}

	for _, rule := range rules {
		rule.ProfessionalID = professionalID
	}

	if err := s.validator.ValidateRules(rules); err != nil {
		s.cfg.Log.Warn("Availability rules validation failed", "professional_id", professionalID, "error", err)
		return apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}

	err := s.ruleRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ruleRepo.ReplaceForProfessional(sessCtx, professionalID, rules); err != nil {
			return apperrors.Internal("Failed to replace availability rules", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to set weekly availability", "professional_id", professionalID, "error", err)
		return err
	}

	s.cfg.Log.Info("Weekly availability updated",
		"professional_id", professionalID,
		"rules", len(rules),
	)
	return nil
}

func (s *availabilityService) GetWeeklyAvailability(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	rules, err := s.ruleRepo.FindByProfessional(ctx, professionalID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve availability rules", err)
	}

	return rules, nil
}

func (s *availabilityService) BlockSlot(ctx context.Context, professionalID string, req *model.BlockSlotRequest) (*model.BlockedSlot, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	if req.Reason == "" {
		req.Reason = model.ReasonPersonal
	}

	if err := s.validator.ValidateBlockRequest(req); err != nil {
		s.cfg.Log.Warn("Block slot validation failed", "professional_id", professionalID, "error", err)
		return nil, apperrors.Validation("Block slot validation failed", map[string]any{"error": err.Error()})
	}

	slot := &model.BlockedSlot{
		ProfessionalID: professionalID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Reason:         req.Reason,
	}

	err := s.blockedRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlapping, err := s.blockedRepo.FindOverlapping(sessCtx, professionalID, req.Date, req.StartTime, req.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check blocked slot overlap", err)
		}
		if len(overlapping) > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Requested block overlaps an existing block (%s - %s)",
				overlapping[0].StartTime,
				overlapping[0].EndTime,
			))
		}

		if err := s.blockedRepo.Create(sessCtx, slot); err != nil {
			return apperrors.Internal("Failed to create blocked slot", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to block slot", "professional_id", professionalID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Slot blocked",
		"professional_id", professionalID,
		"date", slot.Date,
		"start_time", slot.StartTime,
		"end_time", slot.EndTime,
		"reason", slot.Reason,
	)
	return slot, nil
}

func (s *availabilityService) UnblockSlot(ctx context.Context, professionalID string, slotID string) error {
	if slotID == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.blockedRepo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, availerrors.ErrSlotNotFound) {
			return apperrors.NotFoundWithID("Blocked slot", slotID)
		}
		return apperrors.Internal("Failed to retrieve blocked slot", err)
	}

	if slot.ProfessionalID != professionalID {
		return apperrors.Forbidden("Blocked slot belongs to another professional")
	}

	// Booking blocks are released only through the booking lifecycle.
	if slot.Reason == model.ReasonBooking {
		return apperrors.Forbidden("Slot is held by a booking and cannot be unblocked directly")
	}

	if err := s.blockedRepo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, availerrors.ErrSlotNotFound) {
			return apperrors.NotFoundWithID("Blocked slot", slotID)
		}
		return apperrors.Internal("Failed to delete blocked slot", err)
	}

	s.cfg.Log.Info("Slot unblocked", "professional_id", professionalID, "slot_id", slotID)
	return nil
}

func (s *availabilityService) ListBlockedSlots(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}
	// date is optional; without it the whole calendar is returned
	if date == "" {
		slots, err := s.blockedRepo.FindByProfessional(ctx, professionalID)
		if err != nil {
			return nil, apperrors.Internal("Failed to retrieve blocked slots", err)
		}
		return slots, nil
	}

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	slots, err := s.blockedRepo.FindByProfessionalAndDate(ctx, professionalID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve blocked slots", err)
	}

	return slots, nil
}

// ListAvailableSlots computes the bookable start options for one day:
// the weekly window for that weekday, minus every blocked range, stepped
// by the configured slot granularity.
func (s *availabilityService) ListAvailableSlots(ctx context.Context, professionalID string, date string, hours int) ([]*model.AvailableSlot, error) {
	if professionalID == "" {
		return nil, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	if hours <= 0 {
		hours = 1
	}
	if hours > s.cfg.MaxBookingHours {
		return nil, apperrors.Validation("Requested duration exceeds the maximum booking length", map[string]any{
			"hours":     hours,
			"max_hours": s.cfg.MaxBookingHours,
		})
	}

	window, err := s.dayWindow(ctx, professionalID, day)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return []*model.AvailableSlot{}, nil
	}

	busy, err := s.blockedRanges(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}

	free := timerange.Subtract(*window, busy)
	duration := timerange.Minutes(hours) * timerange.Hour
	step := timerange.Minutes(s.cfg.SlotStepMinutes)

	starts := timerange.StartsWithin(free, duration, step)

	slots := make([]*model.AvailableSlot, 0, len(starts))
	for _, start := range starts {
		slots = append(slots, &model.AvailableSlot{
			StartTime: start.String(),
			EndTime:   (start + duration).String(),
			Duration:  hours,
		})
	}

	s.cfg.Log.Debug("Available slots computed",
		"professional_id", professionalID,
		"date", date,
		"hours", hours,
		"slots", len(slots),
	)
	return slots, nil
}

// IsRangeAvailable reports whether [startTime, endTime) on the given date
// falls inside the weekly window and clears every blocked slot. It runs
// against the passed context so a transactional caller re-checks under
// the transaction's snapshot.
func (s *availabilityService) IsRangeAvailable(ctx context.Context, professionalID string, date string, startTime string, endTime string) (bool, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, apperrors.InvalidInput("Date must be in YYYY-MM-DD format")
	}

	start, err := timerange.Parse(startTime)
	if err != nil {
		return false, apperrors.InvalidInput("start_time must be in HH:MM format")
	}
	end, err := timerange.Parse(endTime)
	if err != nil {
		return false, apperrors.InvalidInput("end_time must be in HH:MM format")
	}
	requested := timerange.Range{Start: start, End: end}
	if !requested.IsValid() {
		return false, apperrors.InvalidInput("end_time must be after start_time")
	}

	window, err := s.dayWindow(ctx, professionalID, day)
	if err != nil {
		return false, err
	}
	if window == nil || !window.Contains(requested) {
		return false, nil
	}

	overlapping, err := s.blockedRepo.FindOverlapping(ctx, professionalID, date, startTime, endTime)
	if err != nil {
		return false, apperrors.Internal("Failed to check blocked slot overlap", err)
	}

	return len(overlapping) == 0, nil
}

func (s *availabilityService) BlockForBooking(ctx context.Context, booking *model.Booking) error {
	slot := &model.BlockedSlot{
		ProfessionalID: booking.ProfessionalID,
		BookingID:      booking.ID,
		Date:           booking.Date,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Reason:         model.ReasonBooking,
	}

	if err := s.blockedRepo.Create(ctx, slot); err != nil {
		return apperrors.Internal("Failed to create booking blocked slot", err)
	}

	return nil
}

func (s *availabilityService) UnblockForBooking(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.blockedRepo.DeleteByBookingID(ctx, bookingID); err != nil {
		return apperrors.Internal("Failed to release booking blocked slots", err)
	}

	return nil
}

// --- Helpers ---

// dayWindow returns the open range for the date's weekday, or nil when the
// professional does not work that day.
func (s *availabilityService) dayWindow(ctx context.Context, professionalID string, day time.Time) (*timerange.Range, error) {
	rule, err := s.ruleRepo.FindByProfessionalAndDay(ctx, professionalID, int(day.Weekday()))
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve availability rule", err)
	}
	if rule == nil || !rule.IsAvailable {
		return nil, nil
	}

	start, err := timerange.Parse(rule.StartTime)
	if err != nil {
		return nil, apperrors.Internal("Stored availability rule has malformed start_time", err)
	}
	end, err := timerange.Parse(rule.EndTime)
	if err != nil {
		return nil, apperrors.Internal("Stored availability rule has malformed end_time", err)
	}

	return &timerange.Range{Start: start, End: end}, nil
}

func (s *availabilityService) blockedRanges(ctx context.Context, professionalID string, date string) ([]timerange.Range, error) {
	slots, err := s.blockedRepo.FindByProfessionalAndDate(ctx, professionalID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve blocked slots", err)
	}

	ranges := make([]timerange.Range, 0, len(slots))
	for _, slot := range slots {
		start, err := timerange.Parse(slot.StartTime)
		if err != nil {
			continue
		}
		end, err := timerange.Parse(slot.EndTime)
		if err != nil {
			continue
		}
		ranges = append(ranges, timerange.Range{Start: start, End: end})
	}

	return ranges, nil
}
