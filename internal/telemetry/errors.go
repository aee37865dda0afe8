package telemetry

import "strings"

// ErrorMissingEnvVariable is returned when an exporter needs a setting that was not provided.
type ErrorMissingEnvVariable struct {
	Vars []string
}

func (err *ErrorMissingEnvVariable) Error() string {
	return "missing environment variable: " + strings.Join(err.Vars, ", ")
}
