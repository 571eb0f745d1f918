package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vscraper/vscraper-go/internal/domain"
	"github.com/vscraper/vscraper-go/internal/events"
)

func TestDownloadLifecycle(t *testing.T) {
	e := newEnv(t)
	url := "https://example.com/lifecycle"

	sub := e.emitter.Subscribe(events.TopicURLSuccess, events.TopicDownloadUpdate, events.TopicJobDone)
	defer sub.Close()

	w := e.do(t, http.MethodPost, "/api/v1/downloads", submitBody(url))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	decode(t, w, &created)
	id := created["id"]
	require.NotEmpty(t, id)

	h := e.awaitDownload(t)
	h.emit("[download]  25.0% of 40.00MiB at 2.00MiB/s ETA 00:15")
	h.emit("[download]  75.0% of 40.00MiB at 2.00MiB/s ETA 00:05")
	h.finish(domain.ExitState{Code: 0})
	e.jobMgr.Wait()

	var topics []string
	var lastPercent float64
	for len(sub.C) > 0 {
		ev := <-sub.C
		topics = append(topics, ev.Topic)
		if update, ok := ev.Payload.(events.ProgressUpdate); ok {
			assert.GreaterOrEqual(t, update.Percent, lastPercent)
			lastPercent = update.Percent
		}
	}
	require.NotEmpty(t, topics)
	assert.Equal(t, events.TopicURLSuccess, topics[0])
	assert.Equal(t, events.TopicJobDone, topics[len(topics)-1])

	w = e.do(t, http.MethodGet, "/api/v1/downloads/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var job domain.Job
	decode(t, w, &job)
	assert.Equal(t, domain.StateCompleted, job.State)
	assert.Equal(t, 100.0, job.LastProgress)

	w = e.do(t, http.MethodGet, "/api/v1/downloads/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.JobStats
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
}

func TestDownloadFailureSurfacesReason(t *testing.T) {
	e := newEnv(t)
	url := "https://example.com/broken"

	w := e.do(t, http.MethodPost, "/api/v1/downloads", submitBody(url))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	decode(t, w, &created)

	h := e.awaitDownload(t)
	h.mu.Lock()
	h.stderr = "ERROR: video unavailable"
	h.mu.Unlock()
	h.finish(domain.ExitState{Code: 1})
	e.jobMgr.Wait()

	w = e.do(t, http.MethodGet, "/api/v1/downloads/"+created["id"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	var job domain.Job
	decode(t, w, &job)
	assert.Equal(t, domain.StateFailed, job.State)
	assert.Equal(t, "ERROR: video unavailable", job.Reason)
}

func TestListDownloads_StateFilter(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/downloads", submitBody("https://example.com/ok"))
	require.Equal(t, http.StatusCreated, w.Code)
	e.awaitDownload(t).finish(domain.ExitState{Code: 0})

	w = e.do(t, http.MethodPost, "/api/v1/downloads", submitBody("https://example.com/bad"))
	require.Equal(t, http.StatusCreated, w.Code)
	e.awaitDownload(t).finish(domain.ExitState{Code: 1})
	e.jobMgr.Wait()

	w = e.do(t, http.MethodGet, "/api/v1/downloads?state=failed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []domain.Job
	decode(t, w, &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://example.com/bad", jobs[0].URL)

	w = e.do(t, http.MethodGet, "/api/v1/downloads", nil)
	decode(t, w, &jobs)
	assert.Len(t, jobs, 2)
}

func TestEventStreamWebSocket(t *testing.T) {
	e := newEnv(t)
	url := "https://example.com/streamed"

	wsURL := "ws" + strings.TrimPrefix(e.server.URL, "http") +
		"/api/v1/events?topics=" + events.TopicDownloadUpdate + "," + events.TopicJobDone

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	// Give the handler a moment to register its subscription.
	time.Sleep(100 * time.Millisecond)

	w := e.do(t, http.MethodPost, "/api/v1/downloads", submitBody(url))
	require.Equal(t, http.StatusCreated, w.Code)

	h := e.awaitDownload(t)
	h.emit("[download]  60.0% of 8.00MiB at 1.00MiB/s ETA 00:03")
	h.finish(domain.ExitState{Code: 0})
	e.jobMgr.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first events.Event
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &first))
	assert.Equal(t, events.TopicDownloadUpdate, first.Topic)

	var second events.Event
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &second))
	assert.Equal(t, events.TopicJobDone, second.Topic)

	payload, err := json.Marshal(second.Payload)
	require.NoError(t, err)
	var done events.JobDone
	require.NoError(t, json.Unmarshal(payload, &done))
	assert.Equal(t, "completed", done.State)
	assert.Equal(t, url, done.URL)
}
