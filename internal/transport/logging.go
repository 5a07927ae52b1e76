package transport

import (
	"fmt"

	applog "equalizer/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each message at debug level.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("LoggingTransport: %s", summarize(data))
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	applog.Debugf("LoggingTransport: Close called")
	return nil
}

func summarize(data any) string {
	switch m := data.(type) {
	case SpectrumMessage:
		return fmt.Sprintf("spectrum with %d bins", len(m.Frequencies))
	case PlotMessage:
		return fmt.Sprintf("plot %s %s (%d points)", m.Plot, m.Op, len(m.Xs))
	default:
		return fmt.Sprintf("%T", data)
	}
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
