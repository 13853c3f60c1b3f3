package logger

// CronLogger adapts Logger to the robfig/cron Logger interface.
type CronLogger struct {
	log Logger
}

func NewCronLogger(log Logger) *CronLogger {
	return &CronLogger{log: log.With("component", "scheduler")}
}

func (c *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debugw(msg, keysAndValues...)
}

func (c *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
