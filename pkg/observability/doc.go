// Package observability provides structured logging and panic isolation for
// the StepUp core.
//
// # Overview
//
// Logging is JSON-structured on top of stdlib slog. Components receive a
// *Logger (usually via Named) rather than constructing their own, so field
// context accumulates as the logger is passed down:
//
//	log := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	rlog := log.Named("roles").WithField("subject", subject)
//	rlog.Warn("role lookup failed, synthesizing local role")
//
// # Panic Isolation
//
// RecoverPanic is the isolating boundary for page-level flows: an unexpected
// panic is logged with its stack and swallowed so the caller can fall back to
// a recoverable screen instead of crashing the process.
package observability
