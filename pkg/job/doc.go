// Package job runs periodic tasks on cron schedules using robfig/cron.
//
// Tasks are structs with Name, Schedule and Handle methods. No interface
// import is required; the package uses structural typing:
//
//	type Digest struct{ runner *runner.Runner }
//
//	func (d *Digest) Name() string     { return "digest" }
//	func (d *Digest) Schedule() string { return "0 7 * * *" } // 07:00 daily
//	func (d *Digest) Handle(ctx context.Context) error {
//		_, err := d.runner.Run(ctx)
//		return err
//	}
//
//	s, err := job.NewScheduler(
//		job.WithScheduledTask(&Digest{runner: r}),
//		job.WithLocation(loc),
//		job.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//	if err := s.Start(ctx); err != nil {
//		return err
//	}
//	<-ctx.Done()
//	return s.Stop(context.Background())
//
// Schedules use the standard five fields (minute hour day month weekday).
// A task still running when its next tick fires is skipped for that tick.
package job
