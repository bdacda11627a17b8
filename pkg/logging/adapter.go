package logging

// Adapter wraps a Logger to implement pkg/observer's Logger interface,
// whose methods take a message plus a field map instead of pre-chained
// WithFields calls.
type Adapter struct {
	logger *Logger
}

// NewAdapter wraps logger for use as an observer.Logger.
func NewAdapter(logger *Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.WithFields(fields).Debug(msg)
}

func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.WithFields(fields).Info(msg)
}

func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.WithFields(fields).Warn(msg)
}

func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.WithFields(fields).Error(msg)
}
