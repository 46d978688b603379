// Package logger wraps zap with a process-wide sugared logger and context helpers.
//
// Callers carry a scoped logger inside their context (WithName, WithKV) and log
// through the package-level helpers (Info, InfoKV, WarnKV, ErrorKV, ...), which
// always resolve the logger from the context first and fall back to the global one.
package logger
