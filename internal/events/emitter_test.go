package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestEmitter_PublishSubscribe(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(TopicJobDone)
	defer sub.Close()

	e.Publish(TopicJobDone, JobDone{JobID: "a", State: "completed"})

	ev := receive(t, sub)
	assert.Equal(t, TopicJobDone, ev.Topic)
	payload, ok := ev.Payload.(JobDone)
	require.True(t, ok)
	assert.Equal(t, "a", payload.JobID)
}

func TestEmitter_TopicIsolation(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(TopicDownloadUpdate)
	defer sub.Close()

	e.Publish(TopicJobDone, JobDone{JobID: "a"})
	e.Publish(TopicDownloadUpdate, ProgressUpdate{JobID: "a", Percent: 10})

	ev := receive(t, sub)
	assert.Equal(t, TopicDownloadUpdate, ev.Topic)
	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected event: %+v", extra)
	default:
	}
}

func TestEmitter_MultipleSubscribers(t *testing.T) {
	e := NewEmitter()
	first := e.Subscribe(TopicURLSuccess)
	second := e.Subscribe(TopicURLSuccess)
	defer first.Close()
	defer second.Close()

	e.Publish(TopicURLSuccess, URLSuccess{URL: "u"})

	assert.Equal(t, TopicURLSuccess, receive(t, first).Topic)
	assert.Equal(t, TopicURLSuccess, receive(t, second).Topic)
}

func TestEmitter_NoRetroactiveDelivery(t *testing.T) {
	e := NewEmitter()
	e.Publish(TopicJobDone, JobDone{JobID: "before"})

	sub := e.Subscribe(TopicJobDone)
	defer sub.Close()

	select {
	case ev := <-sub.C:
		t.Fatalf("received event published before subscribing: %+v", ev)
	default:
	}
}

func TestEmitter_OrderPreserved(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(TopicDownloadUpdate)
	defer sub.Close()

	for i := 1; i <= 10; i++ {
		e.Publish(TopicDownloadUpdate, ProgressUpdate{Percent: float64(i * 10)})
	}

	for i := 1; i <= 10; i++ {
		ev := receive(t, sub)
		assert.Equal(t, float64(i*10), ev.Payload.(ProgressUpdate).Percent)
	}
}

func TestEmitter_SlowSubscriberDropsOldest(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(TopicDownloadUpdate)
	defer sub.Close()

	// Overflow the buffer without draining. The newest publishes must
	// survive; the oldest are evicted.
	total := defaultBufferSize + 16
	for i := 0; i < total; i++ {
		e.Publish(TopicDownloadUpdate, ProgressUpdate{Percent: float64(i)})
	}

	last := -1.0
	count := 0
	for {
		select {
		case ev := <-sub.C:
			last = ev.Payload.(ProgressUpdate).Percent
			count++
			continue
		default:
		}
		break
	}

	assert.Equal(t, defaultBufferSize, count)
	assert.Equal(t, float64(total-1), last)
}

func TestSubscription_Close(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(TopicJobDone)

	sub.Close()
	sub.Close() // second close is a no-op

	_, open := <-sub.C
	assert.False(t, open)

	// Publishing after close must not panic or deliver.
	e.Publish(TopicJobDone, JobDone{JobID: "x"})
}

func TestEmitter_SubscribeManyTopics(t *testing.T) {
	e := NewEmitter()
	sub := e.Subscribe(Topics()...)
	defer sub.Close()

	e.Publish(TopicFfmpegInstall, InstallOutcome{Tool: "ffmpeg", Success: true})
	e.Publish(TopicYtdlpInstall, InstallOutcome{Tool: "yt-dlp", Success: false})

	assert.Equal(t, TopicFfmpegInstall, receive(t, sub).Topic)
	assert.Equal(t, TopicYtdlpInstall, receive(t, sub).Topic)
}
