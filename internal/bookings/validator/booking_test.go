package validator

import (
	"testing"
	"time"

	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	v := NewBookingValidator(log, 12, 90)
	// pin the clock so date-window assertions stay stable
	v.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return v
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ClientID:  "client-1",
		ServiceID: "507f1f77bcf86cd799439011",
		Date:      "2026-09-14",
		StartTime: "09:00",
		Hours:     2,
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *model.BookingRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(req *model.BookingRequest) {}},
		{
			name:    "missing client",
			mutate:  func(req *model.BookingRequest) { req.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "malformed service id",
			mutate:  func(req *model.BookingRequest) { req.ServiceID = "not-an-id" },
			wantErr: true,
		},
		{
			name:    "bad date format",
			mutate:  func(req *model.BookingRequest) { req.Date = "14-09-2026" },
			wantErr: true,
		},
		{
			name:    "bad start time",
			mutate:  func(req *model.BookingRequest) { req.StartTime = "9am" },
			wantErr: true,
		},
		{
			name:    "in the past",
			mutate:  func(req *model.BookingRequest) { req.Date = "2026-08-30" },
			wantErr: true,
		},
		{
			name: "same day earlier hour is past",
			mutate: func(req *model.BookingRequest) {
				req.Date = "2026-09-01"
				req.StartTime = "09:00"
			},
			wantErr: true,
		},
		{
			name: "same day later hour is fine",
			mutate: func(req *model.BookingRequest) {
				req.Date = "2026-09-01"
				req.StartTime = "15:00"
			},
		},
		{
			name:    "beyond scheduling window",
			mutate:  func(req *model.BookingRequest) { req.Date = "2027-01-15" },
			wantErr: true,
		},
		{
			name:    "zero hours",
			mutate:  func(req *model.BookingRequest) { req.Hours = 0 },
			wantErr: true,
		},
		{
			name:    "over hour cap",
			mutate:  func(req *model.BookingRequest) { req.Hours = 13 },
			wantErr: true,
		},
		{
			name: "crosses midnight",
			mutate: func(req *model.BookingRequest) {
				req.StartTime = "22:00"
				req.Hours = 3
			},
			wantErr: true,
		},
		{
			name: "ends exactly at midnight",
			mutate: func(req *model.BookingRequest) {
				req.StartTime = "22:00"
				req.Hours = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator()
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateReview(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateReview(&model.ReviewRequest{Rating: 5, Comment: "great"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateReview(&model.ReviewRequest{Rating: 0}); err == nil {
		t.Error("expected error for rating 0")
	}
	if err := v.ValidateReview(&model.ReviewRequest{Rating: 6}); err == nil {
		t.Error("expected error for rating 6")
	}
}
