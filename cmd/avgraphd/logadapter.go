package main

import "github.com/avnodegraph/core/pkg/logging"

// slogAdapter bridges pkg/logging's fixed-field chaining API to the
// map[string]interface{}-per-call shape observer.Logger expects.
type slogAdapter struct {
	logger *logging.Logger
}

func newSlogAdapter(l *logging.Logger) *slogAdapter {
	return &slogAdapter{logger: l}
}

func (a *slogAdapter) withFields(fields map[string]interface{}) *logging.Logger {
	l := a.logger
	for k, v := range fields {
		l = l.WithField(k, v)
	}
	return l
}

func (a *slogAdapter) Debug(msg string, fields map[string]interface{}) { a.withFields(fields).Debug(msg) }
func (a *slogAdapter) Info(msg string, fields map[string]interface{})  { a.withFields(fields).Info(msg) }
func (a *slogAdapter) Warn(msg string, fields map[string]interface{})  { a.withFields(fields).Warn(msg) }
func (a *slogAdapter) Error(msg string, fields map[string]interface{}) { a.withFields(fields).Error(msg) }
