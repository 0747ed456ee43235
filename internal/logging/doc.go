// Package logging carries the slog conventions shared across the
// server: canonical attribute keys and their constructors (Verb,
// Namespace, ExitCode, ...), contextual logger builders (WithTool,
// WithOperation), and host sanitization that strips API server
// addresses out of anything kubectl prints before it reaches a log
// line.
//
// It also defines the small Logger interface and SlogAdapter used where
// a package should not depend on a concrete logger.
//
//	logger := logging.WithTool(slog.Default(), "kubectl_present")
//	logger.Info("processing lifecycle run",
//	    logging.Verb("apply"),
//	    logging.Namespace("default"))
//
//	logger.Error("invocation failed",
//	    logging.SanitizedErr(err),
//	    logging.Host(apiServer))
package logging
