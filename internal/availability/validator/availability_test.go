package validator

import (
	"testing"

	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"
)

func newTestValidator() *AvailabilityValidator {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewAvailabilityValidator(log)
}

func TestValidateRule(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		rule    model.AvailabilityRule
		wantErr bool
	}{
		{
			name: "valid working day",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      1,
				StartTime:      "08:00",
				EndTime:        "17:00",
				IsAvailable:    true,
			},
			wantErr: false,
		},
		{
			name: "end of day window",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      5,
				StartTime:      "20:00",
				EndTime:        "24:00",
				IsAvailable:    true,
			},
			wantErr: false,
		},
		{
			name: "unavailable day needs no window",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      0,
				IsAvailable:    false,
			},
			wantErr: false,
		},
		{
			name: "end before start",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      2,
				StartTime:      "17:00",
				EndTime:        "08:00",
				IsAvailable:    true,
			},
			wantErr: true,
		},
		{
			name: "bad time format",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      2,
				StartTime:      "8am",
				EndTime:        "17:00",
				IsAvailable:    true,
			},
			wantErr: true,
		},
		{
			name: "day of week out of range",
			rule: model.AvailabilityRule{
				ProfessionalID: "pro-1",
				DayOfWeek:      7,
				StartTime:      "08:00",
				EndTime:        "17:00",
				IsAvailable:    true,
			},
			wantErr: true,
		},
		{
			name: "missing professional",
			rule: model.AvailabilityRule{
				DayOfWeek:   1,
				StartTime:   "08:00",
				EndTime:     "17:00",
				IsAvailable: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRule(&tt.rule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRules_DuplicateDay(t *testing.T) {
	v := newTestValidator()

	rules := []*model.AvailabilityRule{
		{ProfessionalID: "pro-1", DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00", IsAvailable: true},
		{ProfessionalID: "pro-1", DayOfWeek: 1, StartTime: "13:00", EndTime: "17:00", IsAvailable: true},
	}

	if err := v.ValidateRules(rules); err == nil {
		t.Error("expected error for duplicate day of week")
	}
}

func TestValidateBlockRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		req     model.BlockSlotRequest
		wantErr bool
	}{
		{
			name: "valid personal block",
			req: model.BlockSlotRequest{
				Date:      "2026-09-15",
				StartTime: "10:00",
				EndTime:   "12:00",
				Reason:    model.ReasonPersonal,
			},
			wantErr: false,
		},
		{
			name: "reason defaults allowed empty",
			req: model.BlockSlotRequest{
				Date:      "2026-09-15",
				StartTime: "10:00",
				EndTime:   "12:00",
			},
			wantErr: false,
		},
		{
			name: "booking reason rejected on manual path",
			req: model.BlockSlotRequest{
				Date:      "2026-09-15",
				StartTime: "10:00",
				EndTime:   "12:00",
				Reason:    model.ReasonBooking,
			},
			wantErr: true,
		},
		{
			name: "bad date format",
			req: model.BlockSlotRequest{
				Date:      "15/09/2026",
				StartTime: "10:00",
				EndTime:   "12:00",
			},
			wantErr: true,
		},
		{
			name: "zero length window",
			req: model.BlockSlotRequest{
				Date:      "2026-09-15",
				StartTime: "10:00",
				EndTime:   "10:00",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBlockRequest(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlockRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
