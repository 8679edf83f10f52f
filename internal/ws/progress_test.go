package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, r.URL.Query().Get("job"))
	}))
}

func dial(t *testing.T, srv *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?job=" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, jobID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		got := len(hub.subs[jobID])
		hub.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("never saw %d subscribers for %s", n, jobID)
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := newTestServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "job-1")
	defer conn.Close()
	waitForSubscribers(t, hub, "job-1", 1)

	hub.Publish(Progress{JobID: "job-1", Processed: 3, Total: 10, Stage: "importing"})

	var got Progress
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Processed != 3 || got.Total != 10 || got.Stage != "importing" {
		t.Errorf("unexpected update: %+v", got)
	}
}

func TestLateSubscriberGetsReplay(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := newTestServer(hub)
	defer srv.Close()

	hub.Publish(Progress{JobID: "job-2", Processed: 7, Total: 10, Stage: "importing"})

	conn := dial(t, srv, "job-2")
	defer conn.Close()

	var got Progress
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("replay read failed: %v", err)
	}
	if got.Processed != 7 {
		t.Errorf("expected replay of processed=7, got %+v", got)
	}
}

func TestDoneClosesSubscribers(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := newTestServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "job-3")
	defer conn.Close()
	waitForSubscribers(t, hub, "job-3", 1)

	hub.Publish(Progress{JobID: "job-3", Processed: 10, Total: 10, Stage: "complete", Done: true})

	var got Progress
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("final read failed: %v", err)
	}
	if !got.Done {
		t.Errorf("expected done update, got %+v", got)
	}
	if err := conn.ReadJSON(&got); err == nil {
		t.Error("expected connection closed after done")
	}

	hub.mu.Lock()
	_, stillThere := hub.subs["job-3"]
	hub.mu.Unlock()
	if stillThere {
		t.Error("expected subscribers forgotten after done")
	}
}

func TestFinishedJobForgotten(t *testing.T) {
	hub := NewHub(quietLogger())
	hub.lastTTL = 10 * time.Millisecond

	hub.Publish(Progress{JobID: "job-4", Processed: 1, Total: 1, Stage: "complete", Done: true})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		_, kept := hub.last["job-4"]
		hub.mu.Unlock()
		if !kept {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("final update still retained after the retention window")
}

// Subscribers connect while updates are being published; the replay write
// and the fan-out write must never hit one connection at the same time.
func TestSubscribeDuringPublishStream(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := newTestServer(hub)
	defer srv.Close()

	const total = 50

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i < total; i++ {
			hub.Publish(Progress{JobID: "job-5", Processed: i, Total: total, Stage: "importing"})
			time.Sleep(time.Millisecond)
		}
		hub.Publish(Progress{JobID: "job-5", Processed: total, Total: total, Stage: "complete", Done: true})
	}()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := dial(t, srv, "job-5")
			defer conn.Close()

			last := -1
			for {
				var got Progress
				if err := conn.ReadJSON(&got); err != nil {
					return
				}
				if got.Processed < last {
					t.Errorf("updates out of order: %d after %d", got.Processed, last)
					return
				}
				last = got.Processed
				if got.Done {
					return
				}
			}
		}()
	}

	wg.Wait()
	<-done
}
