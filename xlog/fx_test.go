package xlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/fx/fxtest"
)

func TestFxModule(t *testing.T) {
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	invoked := false
	app := fxtest.New(t,
		Module(
			WithXLoggerWriter(w),
			WithXLoggerLevel(LogLevelDebug),
		),
		FxLogger(),
		fx.Invoke(func(logger XLogger) {
			invoked = true
			logger.Named("app").Info("invoked")
		}),
	)
	app.RequireStart().RequireStop()
	require.True(t, invoked)

	lines := w.lines()
	require.NotEmpty(t, lines)
	fxLines := 0
	for _, line := range lines {
		if strings.Contains(line, `"component":"Fx"`) {
			fxLines++
		}
	}
	require.Greater(t, fxLines, 0)
	require.Contains(t, strings.Join(lines, "\n"), `"component":"app"`)
	require.Contains(t, strings.Join(lines, "\n"), "RUNNING")
}

func TestFxXLogger_LogEvent(t *testing.T) {
	w := &testMemOutWriter{data: make([]byte, 0, 4096)}
	logger := NewFxXLogger(NewXLogger(WithXLoggerWriter(w), WithXLoggerLevel(LogLevelDebug)))

	testcases := []struct {
		name     string
		event    fxevent.Event
		expected string
	}{
		{"start failed", &fxevent.Started{Err: errors.New("x")}, "Failed to start"},
		{"rolling back", &fxevent.RollingBack{StartErr: errors.New("x")}, "rolling back"},
		{"stop executed", &fxevent.OnStopExecuted{FunctionName: "f"}, "OnStop executed"},
		{"invoke failed", &fxevent.Invoked{FunctionName: "f", Err: errors.New("x")}, "Error fx.Invoke"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			w.Reset()
			logger.LogEvent(tc.event)
			lines := w.lines()
			require.Len(tt, lines, 1)
			require.Contains(tt, lines[0], tc.expected)
		})
	}

	var nilLogger *FxXLogger
	require.NotPanics(t, func() {
		nilLogger.LogEvent(&fxevent.Started{})
	})
}
