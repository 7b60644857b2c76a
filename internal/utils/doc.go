// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader, which layers embedded defaults, an optional
// configuration file and GAMERELEASE_ environment variables through Viper, and
// LoggerFactory, which builds zap loggers and optionally tees them into a
// lumberjack-rotated log file.
package utils
