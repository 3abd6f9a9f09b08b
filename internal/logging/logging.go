// Package logging centralizes logrus setup so every package logs
// through the same formatter and level, the way the teacher's cmd/
// root command configured its single shared logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Configure sets the package-wide logrus level and a text formatter
// with full timestamps, matching the teacher's root.go default.
func Configure(level logrus.Level) {
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)
}

// For returns a logger scoped to component, the same
// logrus.WithField("component", ...) convention used throughout
// internal/pdfmodel, internal/wcag, internal/pdfua and internal/progress.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
