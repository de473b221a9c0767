package logger

import (
	"time"

	"github.com/google/uuid"
)

// Action logs the lifecycle of one user-triggered conversion. Every entry it
// writes carries the same action_id so a run can be followed in the log.
type Action struct {
	logger    Logger
	id        string
	name      string
	startTime time.Time
}

// StartAction creates an action logger and logs its start.
func StartAction(name string, logger Logger) *Action {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	id := uuid.NewString()
	a := &Action{
		logger: logger.WithFields(Fields{
			"action":    name,
			"action_id": id,
		}),
		id:        id,
		name:      name,
		startTime: time.Now(),
	}

	a.logger.Info("Starting action")
	return a
}

// ID returns the action identifier
func (a *Action) ID() string {
	return a.id
}

// Logger returns a logger carrying the action fields, for handing to services.
func (a *Action) Logger() Logger {
	return a.logger
}

// Step logs a named stage of the action with optional fields.
func (a *Action) Step(step string, fields Fields) {
	l := a.logger.WithField("step", step)
	if len(fields) > 0 {
		l = l.WithFields(fields)
	}
	l.Info("Action step")
}

// Warn logs a non-fatal anomaly, such as dropped banner rows.
func (a *Action) Warn(message string, fields Fields) {
	a.logger.WithFields(fields).Warn(message)
}

// Done completes the action successfully.
func (a *Action) Done(fields Fields) {
	a.logger.WithFields(fields).WithFields(Fields{
		"duration": time.Since(a.startTime).String(),
		"status":   "success",
	}).Info("Action completed")
}

// Fail completes the action with an error.
func (a *Action) Fail(err error) {
	a.logger.WithError(err).WithFields(Fields{
		"duration": time.Since(a.startTime).String(),
		"status":   "error",
	}).Error("Action failed")
}

// Run executes fn inside an action and logs the outcome.
func Run(name string, logger Logger, fn func(a *Action) error) error {
	a := StartAction(name, logger)
	if err := fn(a); err != nil {
		a.Fail(err)
		return err
	}
	a.Done(nil)
	return nil
}
