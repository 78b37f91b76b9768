package servicing

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

const followUpBatch = 200

// CreateFollowUps schedules the next visit for every completed quarterly
// visit that has none, at completion date plus the product interval.
func (s *Service) CreateFollowUps(ctx context.Context) (int, error) {
	done, err := s.repos.Services.CompletedWithoutFollowUp(ctx, followUpBatch)
	if err != nil {
		return 0, err
	}
	if len(done) == 0 {
		return 0, nil
	}

	productIDs := make([]snowflake.ID, 0, len(done))
	for _, svc := range done {
		productIDs = append(productIDs, svc.ProductID)
	}
	intervals, err := s.repos.Products.IntervalMonths(ctx, productIDs)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, prev := range done {
		months := intervals[prev.ProductID]
		if months <= 0 {
			months = DefaultIntervalMonths
		}

		err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			customID, err := s.gen.Reserve(ctx, ids.PrefixService, tx.Services.CustomIDExists())
			if err != nil {
				return err
			}
			next := &models.Service{
				ID:            s.gen.NextID(),
				CustomID:      customID,
				CustomerID:    prev.CustomerID,
				CustomerName:  prev.CustomerName,
				CustomerPhone: prev.CustomerPhone,
				ProductID:     prev.ProductID,
				ProductName:   prev.ProductName,
				OrderID:       prev.OrderID,
				ServiceType:   models.ServiceQuarterly,
				Status:        models.ServiceAvailable,
				ScheduledDate: NextVisit(*prev.CompletedDate, months),
				Notes:         fmt.Sprintf("Follow-up of %s", prev.CustomID),
			}
			if err := tx.Services.Create(ctx, next); err != nil {
				return err
			}
			return tx.Services.SetFollowUp(ctx, prev.ID, next.ID)
		})
		if err != nil {
			zap.L().Error("follow-up creation failed", zap.String("service", prev.CustomID), zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}

// NextVisit is completed plus months, at 10:00 on that day.
func NextVisit(completed time.Time, months int) time.Time {
	d := completed.AddDate(0, months, 0)
	return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, d.Location())
}

// DueTomorrow returns open visits scheduled on the calendar day after now in loc.
func (s *Service) DueTomorrow(ctx context.Context, loc *time.Location) ([]models.Service, error) {
	if loc == nil {
		loc = time.Local
	}
	now := s.now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, loc)
	return s.repos.Services.ScheduledBetween(ctx, start, start.AddDate(0, 0, 1))
}
