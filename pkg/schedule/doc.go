// Package schedule runs periodic in-process tasks on cron-like cadences.
//
// A Schedule answers "when is the next run after t". Factories cover the
// cadences tutorhub needs:
//
//	schedule.EveryMinutes(15)          // :00, :15, :30, :45
//	schedule.HourlyAt(0)               // top of every hour
//	schedule.DailyAt(9, 0)             // 09:00 local time
//	schedule.WeeklyOn(time.Sunday, 2, 0)
//
// Scheduler owns a set of named tasks and invokes each one when due:
//
//	s := schedule.NewScheduler(schedule.WithSchedulerLogger(log))
//	_ = s.AddTask("cleanup", schedule.DailyAt(3, 0), cleanup)
//	go s.Start(ctx)
//
// A task never overlaps with itself. If a run is still in flight when the task
// comes due again, that occurrence is skipped and logged at DEBUG level.
// Different tasks run concurrently.
package schedule
