// Package tracing provides AWS X-Ray distributed tracing for the public API.
package tracing

import (
	"fmt"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/config"
)

// Logger adapter for the X-Ray SDK
type xrayLoggerAdapter struct {
	logger *logrus.Logger
}

var _ xraylog.Logger = (*xrayLoggerAdapter)(nil)

func (l *xrayLoggerAdapter) Log(level xraylog.LogLevel, msg fmt.Stringer) {
	switch level {
	case xraylog.LogLevelDebug:
		l.logger.Debug(msg.String())
	case xraylog.LogLevelInfo:
		l.logger.Info(msg.String())
	case xraylog.LogLevelWarn:
		l.logger.Warn(msg.String())
	case xraylog.LogLevelError:
		l.logger.Error(msg.String())
	}
}

// Initialize configures the X-Ray SDK. A disabled config is a no-op.
func Initialize(cfg config.TracingConfig, logger *logrus.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	xray.SetLogger(&xrayLoggerAdapter{logger: logger})

	if err := xray.Configure(xray.Config{DaemonAddr: cfg.DaemonAddr}); err != nil {
		return err
	}

	logger.WithField("daemon_addr", cfg.DaemonAddr).Info("AWS X-Ray initialized")
	return nil
}

// Middleware returns an HTTP middleware that opens one X-Ray segment per
// request, named after the service.
func Middleware(serviceName string) func(http.Handler) http.Handler {
	namer := xray.NewFixedSegmentNamer(serviceName)
	return func(next http.Handler) http.Handler {
		return xray.Handler(namer, next)
	}
}
