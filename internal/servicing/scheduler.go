package servicing

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Messenger delivers a text message to a phone number.
type Messenger interface {
	SendSMS(to, message string) error
}

type SchedulerConfig struct {
	Location      *time.Location
	QuarterlyCron string
	ReminderCron  string
	Workers       int
	CompanyName   string
}

// Scheduler runs the follow-up and reminder jobs.
type Scheduler struct {
	svc  *Service
	sms  Messenger
	cfg  SchedulerConfig
	cron *cron.Cron
	pool *ants.Pool
}

func NewScheduler(svc *Service, sms Messenger, cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "reminder pool")
	}
	return &Scheduler{
		svc:  svc,
		sms:  sms,
		cfg:  cfg,
		cron: cron.New(cron.WithLocation(cfg.Location), cron.WithParser(cronParser)),
		pool: pool,
	}, nil
}

func (s *Scheduler) Start() error {
	if s.cfg.QuarterlyCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.QuarterlyCron, func() {
			n, err := s.svc.CreateFollowUps(context.Background())
			if err != nil {
				zap.L().Error("follow-up job failed", zap.Error(err))
				return
			}
			zap.L().Info("follow-up job finished", zap.Int("created", n))
		}); err != nil {
			return errors.Wrapf(err, "invalid QUARTERLY_CRON %q", s.cfg.QuarterlyCron)
		}
	}
	if s.cfg.ReminderCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.ReminderCron, func() {
			n, err := s.SendReminders(context.Background())
			if err != nil {
				zap.L().Error("reminder job failed", zap.Error(err))
				return
			}
			zap.L().Info("reminder job finished", zap.Int("sent", n))
		}); err != nil {
			return errors.Wrapf(err, "invalid REMINDER_CRON %q", s.cfg.ReminderCron)
		}
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs and releases the worker pool.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.pool.Release()
}

// SendReminders texts every customer with a visit tomorrow and returns how
// many messages went out.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	if s.sms == nil {
		zap.L().Debug("sms disabled, skipping service reminders")
		return 0, nil
	}
	due, err := s.svc.DueTomorrow(ctx, s.cfg.Location)
	if err != nil {
		return 0, err
	}

	var sent int64
	var wg sync.WaitGroup
	for _, svc := range due {
		if svc.CustomerPhone == "" {
			continue
		}
		svc := svc
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.sms.SendSMS(svc.CustomerPhone, s.reminderText(&svc)); err != nil {
				zap.L().Warn("service reminder failed", zap.String("service", svc.CustomID), zap.Error(err))
				return
			}
			atomic.AddInt64(&sent, 1)
		})
		if err != nil {
			wg.Done()
			zap.L().Error("reminder submit failed", zap.String("service", svc.CustomID), zap.Error(err))
		}
	}
	wg.Wait()
	return int(sent), nil
}

func (s *Scheduler) reminderText(svc *models.Service) string {
	when := svc.ScheduledDate.In(s.cfg.Location).Format("02 Jan 2006 03:04 PM")
	msg := fmt.Sprintf("Reminder: your %s service %s is scheduled for %s.", svc.ProductName, svc.CustomID, when)
	if s.cfg.CompanyName != "" {
		msg += " - " + s.cfg.CompanyName
	}
	return msg
}
