package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TourDateCompleter closes tour dates that have ended
type TourDateCompleter interface {
	CompletePast(now time.Time) ([]uuid.UUID, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	schedule string
	dates    TourDateCompleter
	logger   *logrus.Logger
	now      func() time.Time
}

// NewCronService creates a new CronService. schedule is a cron spec with
// a seconds field.
func NewCronService(dates TourDateCompleter, schedule string, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(cron.WithSeconds()),
		schedule: schedule,
		dates:    dates,
		logger:   logger,
		now:      time.Now,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	// Cron format: second minute hour day month weekday
	if _, err := s.cron.AddFunc(s.schedule, s.completeTourDatesJob); err != nil {
		return fmt.Errorf("failed to schedule tour date lifecycle job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: complete ended tour dates")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// completeTourDatesJob marks ended tour dates and their operations completed
func (s *CronService) completeTourDatesJob() {
	startTime := time.Now()

	ids, err := s.dates.CompletePast(s.now())
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Failed to complete ended tour dates")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"completed": len(ids),
		"duration":  time.Since(startTime).String(),
	}).Info("[CRON] Completed ended tour dates")
}

// RunCompleteTourDatesNow runs the lifecycle job immediately
func (s *CronService) RunCompleteTourDatesNow() {
	s.completeTourDatesJob()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
