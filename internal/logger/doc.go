// Package logger wraps zap for the emergency ringer daemon and CLI.
//
// It keeps a global sugared logger with a console encoder, carries scoped
// loggers in contexts (ToContext/FromContext/WithName/WithKV), and can tee
// output into an on-device debug log file.
package logger
