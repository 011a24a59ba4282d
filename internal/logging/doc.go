// Package logging builds the slog loggers used across waitline.
//
// Two output formats are supported: a console handler for humans (colored
// when stdout is a terminal) and a JSON handler for machine consumption.
// Helpers here also define the standardized attribute keys so components log
// the same field names everywhere.
package logging
