package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	EventTypeDay  = "day"
	EventTypePlan = "plan"

	sendBufferSize = 16
	writeWait      = 5 * time.Second
)

// Event tells subscribers which view went stale. It carries no data: clients re-request.
type Event struct {
	Type    string               `json:"type"`
	Date    *workouts.Date       `json:"date,omitempty"`
	Weekday workouts.WeekdaySlot `json:"weekday,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

var _ workouts.ChangeNotifier = (*Hub)(nil)

// Hub fans change events out to websocket subscribers.
// Slow subscribers whose buffer is full are dropped.
type Hub struct {
	mutex       sync.Mutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	metrics     *metrics.Manager
}

func NewHub(allowedOrigins []string, metricsManager *metrics.Manager) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &Hub{
		subscribers: map[*subscriber]struct{}{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		metrics: metricsManager,
	}
}

func (h *Hub) DayChanged(date workouts.Date) {
	h.publish(Event{Type: EventTypeDay, Date: &date})
}

func (h *Hub) PlanChanged(slot workouts.WeekdaySlot) {
	h.publish(Event{Type: EventTypePlan, Weekday: slot})
}

func (h *Hub) Subscribers() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request and streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader already replied
		log.Debugf("websocket upgrade: %s", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	h.add(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(sub)
	}()

	// clients are not expected to send anything; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(sub)
	<-done
	if err := conn.Close(); err != nil {
		log.Tracef("websocket close: %s", err)
	}
}

// Close drops all subscribers.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for sub := range h.subscribers {
		h.dropLocked(sub)
		if err := sub.conn.Close(); err != nil {
			log.Tracef("websocket close: %s", err)
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	for msg := range sub.send {
		if err := sub.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Debugf("websocket set write deadline: %s", err)
		}
		if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debugf("websocket write: %s", err)
			// unblocks the read loop
			_ = sub.conn.Close()
			h.remove(sub)
			// drain, the channel is closed by remove
			for range sub.send {
			}
			return
		}
	}
	_ = sub.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

func (h *Hub) publish(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Errorf("marshal change event: %s", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- msg:
		default:
			log.Warnf("websocket subscriber %s too slow, dropping", sub.conn.RemoteAddr())
			h.dropLocked(sub)
			_ = sub.conn.Close()
		}
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.subscribers[sub] = struct{}{}
	h.updateGauge()
}

func (h *Hub) remove(sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(sub)
}

func (h *Hub) dropLocked(sub *subscriber) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.send)
	h.updateGauge()
}

func (h *Hub) updateGauge() {
	if h.metrics != nil {
		h.metrics.GaugeSubscribers.Set(float64(len(h.subscribers)))
	}
}
