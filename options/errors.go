package options

// ConfigurationError is returned when a required config or data directory is missing or the
// environment cannot be decoded.
type ConfigurationError struct {
	Message string
}

func (err ConfigurationError) Error() string {
	return "configuration error: " + err.Message
}
