//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	regmetrics "regform/internal/registration/metrics"
	"regform/internal/registration/models"
	"regform/internal/registration/service/mocks"
	dErrors "regform/pkg/domain-errors"
	"regform/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	metrics   *regmetrics.Metrics
	service   *Service
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.metrics = regmetrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.service = New(s.mockStore, WithLogger(logger), WithMetrics(s.metrics))
	s.ctx = context.Background()
}

func validSubmission() models.Submission {
	return models.Submission{Name: "John Doe", Gender: "male", Email: "john.doe@example.com", Country: "usa"}
}

func (s *ServiceSuite) outcomeCount(outcome string) float64 {
	return promtest.ToFloat64(s.metrics.Registrations.WithLabelValues(outcome))
}

func (s *ServiceSuite) TestRegister() {
	s.Run("valid submission is inserted once", func() {
		sub := validSubmission()
		created := models.NewRecord(7, sub, time.Now())
		s.mockStore.EXPECT().Insert(gomock.Any(), sub).Return(created, nil).Times(1)

		rec, err := s.service.Register(s.ctx, sub)
		s.Require().NoError(err)
		s.Equal(int64(7), rec.ID)
		s.Equal(float64(1), s.outcomeCount(regmetrics.OutcomeCreated))
	})

	s.Run("missing field never reaches the store", func() {
		sub := validSubmission()
		sub.Country = ""

		_, err := s.service.Register(s.ctx, sub)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		de, _ := dErrors.As(err)
		s.Equal(MsgAllFieldsRequired, de.Message)
	})

	s.Run("invalid email never reaches the store", func() {
		sub := validSubmission()
		sub.Email = "not-an-email"

		_, err := s.service.Register(s.ctx, sub)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		de, _ := dErrors.As(err)
		s.Equal(MsgInvalidEmailFormat, de.Message)
		s.Equal(float64(1), s.outcomeCount(regmetrics.OutcomeInvalidEmail))
	})

	s.Run("duplicate email maps to conflict", func() {
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(models.Record{}, fmt.Errorf("insert user: %w", sentinel.ErrConflict))

		_, err := s.service.Register(s.ctx, validSubmission())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		de, _ := dErrors.As(err)
		s.Equal(MsgEmailAlreadyRegistered, de.Message)
	})

	s.Run("storage failure is internal and keeps the cause", func() {
		cause := errors.New("disk I/O error")
		s.mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(models.Record{}, fmt.Errorf("insert user: %w: %w", sentinel.ErrUnavailable, cause)).Times(1)

		_, err := s.service.Register(s.ctx, validSubmission())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, cause)
		s.Equal(float64(1), s.outcomeCount(regmetrics.OutcomeError))
	})
}

func (s *ServiceSuite) TestList() {
	s.Run("returns store order", func() {
		now := time.Now()
		records := []models.Record{
			{ID: 2, Email: "b@example.com", CreatedAt: now},
			{ID: 1, Email: "a@example.com", CreatedAt: now.Add(-time.Second)},
		}
		s.mockStore.EXPECT().List(gomock.Any()).Return(records, nil)

		got, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Equal(records, got)
	})

	s.Run("nil from store becomes empty slice", func() {
		s.mockStore.EXPECT().List(gomock.Any()).Return(nil, nil)

		got, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.NotNil(got)
		s.Empty(got)
	})

	s.Run("storage failure is internal", func() {
		s.mockStore.EXPECT().List(gomock.Any()).Return(nil, sentinel.ErrUnavailable)

		_, err := s.service.List(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestCount() {
	s.Run("returns store count", func() {
		s.mockStore.EXPECT().Count(gomock.Any()).Return(3, nil)

		n, err := s.service.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(3, n)
	})

	s.Run("storage failure is internal", func() {
		s.mockStore.EXPECT().Count(gomock.Any()).Return(0, sentinel.ErrUnavailable)

		_, err := s.service.Count(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
