package transport

import (
	"encoding/json"

	applog "audioprofile/internal/log"
)

// LoggingTransport writes each event to the debug log as JSON.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs data. Values that cannot be marshalled are logged with %+v.
func (lt *LoggingTransport) Send(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		applog.Debugf("Transport: %T %+v (marshal error: %v)", data, data, err)
		return nil
	}
	applog.Debugf("Transport: %s", payload)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
