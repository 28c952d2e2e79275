package service

import (
	"context"
	"testing"
	"time"

	"github.com/sanchez188/serviProf/internal/availability/validator"
	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repositories for testing
// ────────────────────────────────────────────────

type mockRuleRepository struct {
	findByProfessionalFunc       func(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error)
	findByProfessionalAndDayFunc func(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error)
	replaceFunc                  func(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error
}

func (m *mockRuleRepository) ReplaceForProfessional(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, professionalID, rules)
	}
	return nil
}

func (m *mockRuleRepository) FindByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error) {
	if m.findByProfessionalFunc != nil {
		return m.findByProfessionalFunc(ctx, professionalID)
	}
	return []*model.AvailabilityRule{}, nil
}

func (m *mockRuleRepository) FindByProfessionalAndDay(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error) {
	if m.findByProfessionalAndDayFunc != nil {
		return m.findByProfessionalAndDayFunc(ctx, professionalID, dayOfWeek)
	}
	return nil, nil
}

func (m *mockRuleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBlockedRepository struct {
	createFunc          func(ctx context.Context, slot *model.BlockedSlot) error
	findByIDFunc        func(ctx context.Context, id string) (*model.BlockedSlot, error)
	findByDateFunc      func(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error)
	findOverlappingFunc func(ctx context.Context, professionalID, date, startTime, endTime string) ([]*model.BlockedSlot, error)
	deleteFunc          func(ctx context.Context, id string) error
	deleteByBookingFunc func(ctx context.Context, bookingID string) error
}

func (m *mockBlockedRepository) Create(ctx context.Context, slot *model.BlockedSlot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, slot)
	}
	return nil
}

func (m *mockBlockedRepository) FindByID(ctx context.Context, id string) (*model.BlockedSlot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBlockedRepository) FindByProfessional(ctx context.Context, professionalID string) ([]*model.BlockedSlot, error) {
	return []*model.BlockedSlot{}, nil
}

func (m *mockBlockedRepository) FindByProfessionalAndDate(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error) {
	if m.findByDateFunc != nil {
		return m.findByDateFunc(ctx, professionalID, date)
	}
	return []*model.BlockedSlot{}, nil
}

func (m *mockBlockedRepository) FindOverlapping(ctx context.Context, professionalID string, date string, startTime string, endTime string) ([]*model.BlockedSlot, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, professionalID, date, startTime, endTime)
	}
	return []*model.BlockedSlot{}, nil
}

func (m *mockBlockedRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBlockedRepository) DeleteByBookingID(ctx context.Context, bookingID string) error {
	if m.deleteByBookingFunc != nil {
		return m.deleteByBookingFunc(ctx, bookingID)
	}
	return nil
}

func (m *mockBlockedRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func newTestService(ruleRepo *mockRuleRepository, blockedRepo *mockBlockedRepository) AvailabilityService {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		Log:             log,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		SlotStepMinutes: 60,
		MaxBookingHours: 12,
	}
	return NewAvailabilityService(ruleRepo, blockedRepo, validator.NewAvailabilityValidator(log), cfg)
}

// 2026-09-14 is a Monday.
const mondayDate = "2026-09-14"

func mondayRule(start, end string) *mockRuleRepository {
	return &mockRuleRepository{
		findByProfessionalAndDayFunc: func(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error) {
			if dayOfWeek != 1 {
				return nil, nil
			}
			return &model.AvailabilityRule{
				ProfessionalID: professionalID,
				DayOfWeek:      1,
				StartTime:      start,
				EndTime:        end,
				IsAvailable:    true,
			}, nil
		},
	}
}

func TestListAvailableSlots_FullDay(t *testing.T) {
	svc := newTestService(mondayRule("08:00", "12:00"), &mockBlockedRepository{})

	slots, err := svc.ListAvailableSlots(context.Background(), "pro-1", mondayDate, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:00", "09:00", "10:00", "11:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, slot := range slots {
		if slot.StartTime != want[i] {
			t.Errorf("slot %d: expected start %s, got %s", i, want[i], slot.StartTime)
		}
	}
}

func TestListAvailableSlots_BlockedMiddle(t *testing.T) {
	blockedRepo := &mockBlockedRepository{
		findByDateFunc: func(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error) {
			return []*model.BlockedSlot{
				{ProfessionalID: professionalID, Date: date, StartTime: "09:00", EndTime: "10:00", Reason: model.ReasonBooking},
			}, nil
		},
	}
	svc := newTestService(mondayRule("08:00", "12:00"), blockedRepo)

	slots, err := svc.ListAvailableSlots(context.Background(), "pro-1", mondayDate, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:00", "10:00", "11:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(slots), slots)
	}
	for i, slot := range slots {
		if slot.StartTime != want[i] {
			t.Errorf("slot %d: expected start %s, got %s", i, want[i], slot.StartTime)
		}
	}
}

func TestListAvailableSlots_MultiHourDuration(t *testing.T) {
	svc := newTestService(mondayRule("08:00", "12:00"), &mockBlockedRepository{})

	slots, err := svc.ListAvailableSlots(context.Background(), "pro-1", mondayDate, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3h bookings fit at 08:00 and 09:00 only
	want := []string{"08:00", "09:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i, slot := range slots {
		if slot.StartTime != want[i] {
			t.Errorf("slot %d: expected start %s, got %s", i, want[i], slot.StartTime)
		}
		if slot.Duration != 3 {
			t.Errorf("slot %d: expected duration 3, got %d", i, slot.Duration)
		}
	}
	if slots[0].EndTime != "11:00" {
		t.Errorf("expected first slot end 11:00, got %s", slots[0].EndTime)
	}
}

func TestListAvailableSlots_DayOff(t *testing.T) {
	ruleRepo := &mockRuleRepository{
		findByProfessionalAndDayFunc: func(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error) {
			return &model.AvailabilityRule{
				ProfessionalID: professionalID,
				DayOfWeek:      dayOfWeek,
				IsAvailable:    false,
			}, nil
		},
	}
	svc := newTestService(ruleRepo, &mockBlockedRepository{})

	slots, err := svc.ListAvailableSlots(context.Background(), "pro-1", mondayDate, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on a day off, got %d", len(slots))
	}
}

func TestListAvailableSlots_NoRule(t *testing.T) {
	svc := newTestService(&mockRuleRepository{}, &mockBlockedRepository{})

	slots, err := svc.ListAvailableSlots(context.Background(), "pro-1", mondayDate, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots without a rule, got %d", len(slots))
	}
}

func TestIsRangeAvailable(t *testing.T) {
	blockedRepo := &mockBlockedRepository{
		findOverlappingFunc: func(ctx context.Context, professionalID, date, startTime, endTime string) ([]*model.BlockedSlot, error) {
			// 10:00-11:00 is taken
			if startTime < "11:00" && endTime > "10:00" {
				return []*model.BlockedSlot{
					{StartTime: "10:00", EndTime: "11:00", Reason: model.ReasonBooking},
				}, nil
			}
			return []*model.BlockedSlot{}, nil
		},
	}
	svc := newTestService(mondayRule("08:00", "17:00"), blockedRepo)

	tests := []struct {
		name          string
		start, end    string
		wantAvailable bool
	}{
		{name: "free range", start: "08:00", end: "10:00", wantAvailable: true},
		{name: "overlaps block", start: "09:00", end: "11:00", wantAvailable: false},
		{name: "touching block end is free", start: "11:00", end: "12:00", wantAvailable: true},
		{name: "outside window", start: "17:00", end: "18:00", wantAvailable: false},
		{name: "before window", start: "07:00", end: "08:00", wantAvailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsRangeAvailable(context.Background(), "pro-1", mondayDate, tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantAvailable {
				t.Errorf("IsRangeAvailable(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.wantAvailable)
			}
		})
	}
}

func TestBlockSlot_OverlapConflict(t *testing.T) {
	blockedRepo := &mockBlockedRepository{
		findOverlappingFunc: func(ctx context.Context, professionalID, date, startTime, endTime string) ([]*model.BlockedSlot, error) {
			return []*model.BlockedSlot{
				{StartTime: "10:00", EndTime: "12:00", Reason: model.ReasonPersonal},
			}, nil
		},
	}
	svc := newTestService(mondayRule("08:00", "17:00"), blockedRepo)

	_, err := svc.BlockSlot(context.Background(), "pro-1", &model.BlockSlotRequest{
		Date:      mondayDate,
		StartTime: "11:00",
		EndTime:   "13:00",
		Reason:    model.ReasonPersonal,
	})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestBlockSlot_DefaultsReasonToPersonal(t *testing.T) {
	var created *model.BlockedSlot
	blockedRepo := &mockBlockedRepository{
		createFunc: func(ctx context.Context, slot *model.BlockedSlot) error {
			created = slot
			return nil
		},
	}
	svc := newTestService(mondayRule("08:00", "17:00"), blockedRepo)

	slot, err := svc.BlockSlot(context.Background(), "pro-1", &model.BlockSlotRequest{
		Date:      mondayDate,
		StartTime: "10:00",
		EndTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected slot to be created")
	}
	if slot.Reason != model.ReasonPersonal {
		t.Errorf("expected reason personal, got %s", slot.Reason)
	}
}

func TestUnblockSlot_BookingOwnedForbidden(t *testing.T) {
	blockedRepo := &mockBlockedRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BlockedSlot, error) {
			return &model.BlockedSlot{
				ID:             id,
				ProfessionalID: "pro-1",
				BookingID:      "booking-1",
				Reason:         model.ReasonBooking,
			}, nil
		},
	}
	svc := newTestService(&mockRuleRepository{}, blockedRepo)

	err := svc.UnblockSlot(context.Background(), "pro-1", "slot-1")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestUnblockSlot_WrongProfessional(t *testing.T) {
	blockedRepo := &mockBlockedRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BlockedSlot, error) {
			return &model.BlockedSlot{
				ID:             id,
				ProfessionalID: "pro-2",
				Reason:         model.ReasonPersonal,
			}, nil
		},
	}
	svc := newTestService(&mockRuleRepository{}, blockedRepo)

	err := svc.UnblockSlot(context.Background(), "pro-1", "slot-1")
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestSetWeeklyAvailability_InvalidRules(t *testing.T) {
	svc := newTestService(&mockRuleRepository{}, &mockBlockedRepository{})

	rules := []*model.AvailabilityRule{
		{DayOfWeek: 1, StartTime: "17:00", EndTime: "08:00", IsAvailable: true},
	}

	err := svc.SetWeeklyAvailability(context.Background(), "pro-1", rules)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSetWeeklyAvailability_ReplacesInTransaction(t *testing.T) {
	replaced := false
	ruleRepo := &mockRuleRepository{
		replaceFunc: func(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error {
			replaced = true
			if len(rules) != 2 {
				t.Errorf("expected 2 rules, got %d", len(rules))
			}
			return nil
		},
	}
	svc := newTestService(ruleRepo, &mockBlockedRepository{})

	rules := []*model.AvailabilityRule{
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "17:00", IsAvailable: true},
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "13:00", IsAvailable: true},
	}

	if err := svc.SetWeeklyAvailability(context.Background(), "pro-1", rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replaced {
		t.Error("expected ReplaceForProfessional to be called")
	}
}
