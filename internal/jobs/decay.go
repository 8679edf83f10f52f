package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/otakushelf/otakushelf/internal/domain"
	"github.com/otakushelf/otakushelf/internal/profilestore"
	"github.com/otakushelf/otakushelf/internal/taste"
)

// DecayScheduler runs the nightly taste decay sweep over every stored
// profile so genres nobody touches fade over time.
type DecayScheduler struct {
	scheduler gocron.Scheduler
	profiles  *profilestore.Store
	log       *logrus.Logger
}

func NewDecayScheduler(profiles *profilestore.Store, log *logrus.Logger) (*DecayScheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}
	return &DecayScheduler{scheduler: s, profiles: profiles, log: log}, nil
}

// Start registers the daily job at the given UTC hour and starts the
// scheduler.
func (d *DecayScheduler) Start(hour int) error {
	_, err := d.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(d.run),
	)
	if err != nil {
		return err
	}
	d.scheduler.Start()
	d.log.WithField("hour_utc", hour).Info("Taste decay job scheduled")
	return nil
}

func (d *DecayScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	var swept int
	err := d.profiles.ForEach(ctx, func(p *domain.Profile) error {
		taste.ApplyDecay(p, now)
		if err := d.profiles.Save(ctx, p); err != nil {
			return err
		}
		swept++
		return nil
	})
	if err != nil {
		d.log.WithError(err).Error("Taste decay sweep aborted")
		return
	}
	d.log.WithField("profiles", swept).Info("Taste decay sweep complete")
}

func (d *DecayScheduler) Shutdown() error {
	return d.scheduler.Shutdown()
}
