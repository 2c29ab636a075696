package document

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTracker_CountsInflight(t *testing.T) {
	tr := newRequestTracker()

	tr.observe(&network.EventRequestWillBeSent{RequestID: "1"})
	tr.observe(&network.EventRequestWillBeSent{RequestID: "2"})
	n, _ := tr.idleFor()
	assert.Equal(t, 2, n)

	tr.observe(&network.EventLoadingFinished{RequestID: "1"})
	tr.observe(&network.EventLoadingFailed{RequestID: "2"})
	n, _ = tr.idleFor()
	assert.Equal(t, 0, n)
}

func TestRequestTracker_IgnoresOtherEvents(t *testing.T) {
	tr := newRequestTracker()
	tr.observe(&network.EventRequestWillBeSent{RequestID: "1"})

	time.Sleep(20 * time.Millisecond)
	tr.observe(&network.EventResponseReceived{RequestID: "1"})

	n, quiet := tr.idleFor()
	assert.Equal(t, 1, n)
	assert.GreaterOrEqual(t, quiet, 20*time.Millisecond)
}

func TestWaitIdle_WaitsForSettleAfterLastRequest(t *testing.T) {
	tr := newRequestTracker()
	tr.observe(&network.EventRequestWillBeSent{RequestID: "img"})

	finished := make(chan time.Time, 1)
	go func() {
		time.Sleep(60 * time.Millisecond)
		finished <- time.Now()
		tr.observe(&network.EventLoadingFinished{RequestID: "img"})
	}()

	settle := 150 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, tr.waitIdle(ctx, settle))
	assert.GreaterOrEqual(t, time.Since(<-finished), settle)
}

func TestWaitIdle_PendingRequestHitsDeadline(t *testing.T) {
	tr := newRequestTracker()
	tr.observe(&network.EventRequestWillBeSent{RequestID: "stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := tr.waitIdle(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForImages(t *testing.T) {
	t.Run("no grace skips the wait", func(t *testing.T) {
		assert.NoError(t, waitForImages(context.Background(), 0))
	})

	t.Run("evaluation failure is not fatal", func(t *testing.T) {
		// a context without a browser target makes the evaluation fail
		assert.NoError(t, waitForImages(context.Background(), 50*time.Millisecond))
	})

	t.Run("cancelled caller is reported", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, waitForImages(ctx, time.Second), context.Canceled)
	})
}

func TestChromeEngine_Flags(t *testing.T) {
	sandboxed := NewChromeEngine(ChromeConfig{})
	flags := sandboxed.flags()
	assert.Equal(t, true, flags["disable-gpu"])
	assert.Equal(t, true, flags["disable-dev-shm-usage"])
	assert.NotContains(t, flags, "no-sandbox")

	unsandboxed := NewChromeEngine(ChromeConfig{NoSandbox: true})
	assert.Equal(t, true, unsandboxed.flags()["no-sandbox"])
}

func TestChromeEngine_ExecPathOption(t *testing.T) {
	base := len(NewChromeEngine(ChromeConfig{}).allocatorOptions(t.TempDir()))
	withPath := len(NewChromeEngine(ChromeConfig{ExecPath: "/usr/bin/chromium"}).allocatorOptions(t.TempDir()))

	assert.Equal(t, base+1, withPath)
}
