package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestBadgerLogrusAdapterForwardsLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	adapter := NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	adapter.Errorf("error %d", 1)
	adapter.Warningf("warning %d", 2)
	adapter.Infof("info %d", 3)
	adapter.Debugf("debug %d", 4)

	output := buf.String()
	assert.Contains(t, output, "error 1")
	assert.Contains(t, output, "warning 2")
	assert.Contains(t, output, "info 3")
	assert.Contains(t, output, "debug 4")
	assert.Contains(t, output, "component=badgerdb")
}
