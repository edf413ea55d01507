package tracing

import (
	"bytes"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/hackbook/internal/config"
)

type stringerMsg string

func (s stringerMsg) String() string { return string(s) }

func TestLoggerAdapterRoutesLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	var adapter xraylog.Logger = &xrayLoggerAdapter{logger: log}

	adapter.Log(xraylog.LogLevelWarn, stringerMsg("segment emitter backlog"))
	assert.Contains(t, buf.String(), "segment emitter backlog")
	assert.Contains(t, buf.String(), "warning")

	buf.Reset()
	adapter.Log(xraylog.LogLevelDebug, stringerMsg("sampling rule refreshed"))
	assert.Contains(t, buf.String(), "sampling rule refreshed")
}

func TestInitializeDisabledIsNoOp(t *testing.T) {
	err := Initialize(config.TracingConfig{Enabled: false}, logrus.New())
	assert.NoError(t, err)
}
