// Package logger provides a structured logging facility based on Zap.
//
// # Run Scoping
//
// Every regeneration run gets a random run id. WithRun attaches the job name and
// that id to a logger so all lines of one run can be correlated, including lines
// emitted by the repositories and the notifier.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (operator terminals)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	l := logger.WithRun(log, "category-tree", runID)
//	l.Info("Starting regeneration")
package logger
