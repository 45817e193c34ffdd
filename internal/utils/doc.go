// Package utils holds the process plumbing shared by every command: the
// layered Viper configuration loader, the zap logger factory, and the
// line flushing console writer.
package utils
