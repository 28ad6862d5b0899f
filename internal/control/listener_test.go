package control

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KNICEX/position-tracker/internal/schedule"
	"github.com/KNICEX/position-tracker/internal/service/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatus() monitor.Status {
	return monitor.Status{
		ActiveSymbols: []string{"BTCUSDT", "ETHUSDT"},
		Interval:      time.Second * 10,
		Recipients:    3,
	}
}

func TestListener_Stop(t *testing.T) {
	intents := make(chan schedule.Intent, 1)
	var out bytes.Buffer
	listener := NewListener(strings.NewReader("stop\n"), &out, intents, testStatus)

	listener.Listen(context.Background())

	select {
	case intent := <-intents:
		assert.Equal(t, schedule.IntentStop, intent)
	default:
		t.Fatal("expected stop intent")
	}
	assert.Contains(t, out.String(), "Stopping bot")
}

func TestListener_Restart(t *testing.T) {
	intents := make(chan schedule.Intent, 1)
	var out bytes.Buffer
	listener := NewListener(strings.NewReader("restart\n"), &out, intents, testStatus)

	listener.Listen(context.Background())

	select {
	case intent := <-intents:
		assert.Equal(t, schedule.IntentRestart, intent)
	default:
		t.Fatal("expected restart intent")
	}
}

func TestListener_Status(t *testing.T) {
	intents := make(chan schedule.Intent, 1)
	var out bytes.Buffer
	listener := NewListener(strings.NewReader("status\n"), &out, intents, testStatus)

	listener.Listen(context.Background())

	output := out.String()
	assert.Contains(t, output, "Active positions: 2")
	assert.Contains(t, output, "BTCUSDT")
	assert.Contains(t, output, "10s")
	assert.Contains(t, output, "Configured recipients: 3")

	// status 不产生任何控制意图
	select {
	case <-intents:
		t.Fatal("status must not emit an intent")
	default:
	}
}

func TestListener_UnknownCommand(t *testing.T) {
	intents := make(chan schedule.Intent, 1)
	var out bytes.Buffer
	listener := NewListener(strings.NewReader("fly\nstop\n"), &out, intents, testStatus)

	listener.Listen(context.Background())
	assert.Contains(t, out.String(), "Unknown command")

	require.Len(t, intents, 1)
	assert.Equal(t, schedule.IntentStop, <-intents)
}
