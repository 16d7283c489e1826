package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Refresher is the part of the chart component the scheduler drives.
type Refresher interface {
	Refresh()
}

// Scheduler re-runs the fetch cycle for the current selection on a cron schedule.
type Scheduler struct {
	Cron   *cron.Cron
	Target Refresher
}

// NewScheduler creates a new Scheduler. Expressions carry a seconds field.
func NewScheduler(target Refresher) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Target: target,
	}
}

// Register adds the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] scheduled chart refresh")
	s.Target.Refresh()
}
