package notify

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return conn
}

func TestHub_DeliversEvents(t *testing.T) {
	metricsManager := metrics.NewTestManager()
	hub := NewHub(nil, metricsManager)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.GaugeSubscribers))

	date := workouts.NewDate(2024, time.January, 1)
	hub.DayChanged(date)
	hub.PlanChanged(workouts.Friday)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventTypeDay, event.Type)
	require.NotNil(t, event.Date)
	assert.Equal(t, date, *event.Date)

	event = Event{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventTypePlan, event.Type)
	assert.Equal(t, workouts.Friday, event.Weekday)
	assert.Nil(t, event.Date)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(0), testutil.ToFloat64(metricsManager.GaugeSubscribers))
}

func TestHub_FansOut(t *testing.T) {
	hub := NewHub([]string{"*"}, nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	first := dial(t, server)
	second := dial(t, server)
	defer first.Close()
	defer second.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 2 }, time.Second, 10*time.Millisecond)

	hub.PlanChanged(workouts.Monday)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var event Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, workouts.Monday, event.Weekday)
	}

	hub.Close()
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"https://fittrack.example"}, nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.DayChanged(workouts.NewDate(2024, time.March, 3))
	hub.PlanChanged(workouts.Sunday)
	assert.Equal(t, 0, hub.Subscribers())
}
