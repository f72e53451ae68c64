package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/edulibrary/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	timeouts.Reset()
	if timeouts.Ping() != timeouts.DefaultPing {
		t.Errorf("Ping: got %v", timeouts.Ping())
	}
	if timeouts.Short() != timeouts.DefaultShort {
		t.Errorf("Short: got %v", timeouts.Short())
	}
	if timeouts.Medium() != timeouts.DefaultMedium {
		t.Errorf("Medium: got %v", timeouts.Medium())
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})
	got := timeouts.Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short: got %v", got.Short)
	}
	if got.Ping != timeouts.DefaultPing || got.Medium != timeouts.DefaultMedium {
		t.Errorf("zero values should keep defaults: %+v", got)
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "audit insert")
	<-ctx.Done()
	cancel()

	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Error("expected timeout warning")
	}
}

func TestWithTimeout_NoLogOnCancel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	_, cancel := timeouts.WithTimeout(context.Background(), time.Minute, zap.New(core), "audit insert")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
