package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	for level, want := range map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"":      logrus.InfoLevel,
	} {
		assert.NoError(t, SetLogLevel(level))
		assert.Equal(t, want, Log.GetLevel(), level)
	}
	assert.Error(t, SetLogLevel("verbose"))
}
