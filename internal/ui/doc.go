// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate scenario step events into concise messages so that
// progress through a verification run stays readable for CLI users while
// detailed telemetry continues to flow through structured loggers.
package ui
