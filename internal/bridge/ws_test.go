package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cws "github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/schedule"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

// acceptAllCapability arms nothing and accepts everything, keeping the tests
// independent of the wall clock.
type acceptAllCapability struct{}

func (acceptAllCapability) Schedule(context.Context, model.Reminder) bool { return true }
func (acceptAllCapability) Cancel(context.Context, string)                {}
func (acceptAllCapability) CancelAll(context.Context)                     {}
func (acceptAllCapability) HasPermission(context.Context) bool            { return true }
func (acceptAllCapability) RequestPermission(context.Context) bool        { return true }

var _ schedule.Capability = acceptAllCapability{}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(acceptAllCapability{}, engine.Options{
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
	})
	t.Cleanup(eng.Close)
	return eng
}

func newTestServer(t *testing.T, eng *engine.Engine) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(eng, "", nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/stream"
}

func readFrame(t *testing.T, ctx context.Context, conn *cws.Conn) Frame {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var frame Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

// collectInitial reads frames until one of each type arrived. Connect-time
// replay order across the three streams is not fixed.
func collectInitial(t *testing.T, ctx context.Context, conn *cws.Conn) map[string]Frame {
	t.Helper()
	seen := make(map[string]Frame)
	for len(seen) < 3 {
		frame := readFrame(t, ctx, conn)
		if _, ok := seen[frame.Type]; !ok {
			seen[frame.Type] = frame
		}
	}
	return seen
}

func TestStateSnapshot(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	resp, err := http.Get(srv.URL + "/v1/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap StateSnapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Empty(t, snap.Reminders)
	assert.Zero(t, snap.Count)
}

func TestStateRejectsPost(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	resp, err := http.Post(srv.URL+"/v1/state", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDismissEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := []model.Event{{ID: "standup", Title: "Standup", TimeLabel: "10:30"}}
	require.NoError(t, eng.ScheduleForEvents(ctx, events))
	require.Equal(t, 1, eng.ScheduledCount())

	body := strings.NewReader(`{"id":"` + model.ReminderID("standup") + `"}`)
	resp, err := http.Post(srv.URL+"/v1/reminders/dismiss", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Zero(t, eng.ScheduledCount())
}

func TestReadEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := []model.Event{{ID: "standup", Title: "Standup", TimeLabel: "10:30"}}
	require.NoError(t, eng.ScheduleForEvents(ctx, events))

	body := strings.NewReader(`{"id":"` + model.ReminderID("standup") + `"}`)
	resp, err := http.Post(srv.URL+"/v1/reminders/read", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	reminders := eng.Reminders()
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].IsRead)
}

func TestDismissRejectsEmptyBody(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	resp, err := http.Post(srv.URL+"/v1/reminders/dismiss", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRearmEndpointWithoutCallback(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	resp, err := http.Post(srv.URL+"/v1/rearm", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestRearmEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	called := false
	rearm := func(ctx context.Context) error {
		called = true
		return nil
	}
	srv := httptest.NewServer(NewServer(eng, "", rearm).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/v1/rearm", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, called)
}

func TestStreamReplaysCurrentStateOnConnect(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close(cws.StatusNormalClosure, "")

	initial := collectInitial(t, ctx, conn)
	require.Contains(t, initial, FrameReminders)
	require.Contains(t, initial, FramePermission)
	require.Contains(t, initial, FrameCount)

	assert.Equal(t, float64(0), initial[FrameCount].Data)
}

func TestStreamPushesTransitions(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close(cws.StatusNormalClosure, "")

	collectInitial(t, ctx, conn)

	events := []model.Event{
		{ID: "standup", Title: "Standup", TimeLabel: "10:30"},
	}
	require.NoError(t, eng.ScheduleForEvents(ctx, events))

	// The batch publishes list then count; either may also race a permission
	// frame, so scan for both.
	var gotList, gotCount bool
	for !gotList || !gotCount {
		frame := readFrame(t, ctx, conn)
		switch frame.Type {
		case FrameReminders:
			raw, err := json.Marshal(frame.Data)
			require.NoError(t, err)
			var reminders []model.Reminder
			require.NoError(t, json.Unmarshal(raw, &reminders))
			require.Len(t, reminders, 1)
			assert.Equal(t, model.ReminderID("standup"), reminders[0].ID)
			gotList = true
		case FrameCount:
			if frame.Data == float64(1) {
				gotCount = true
			}
		}
	}
}

func TestStreamMultipleClients(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn1, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn1.Close(cws.StatusNormalClosure, "")

	conn2, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn2.Close(cws.StatusNormalClosure, "")

	for _, conn := range []*cws.Conn{conn1, conn2} {
		initial := collectInitial(t, ctx, conn)
		assert.Contains(t, initial, FrameReminders)
	}
}

func TestStreamClientDisconnect(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)

	collectInitial(t, ctx, conn)
	conn.Close(cws.StatusNormalClosure, "")

	// The server must keep functioning for new clients after a disconnect.
	conn2, _, err := cws.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer conn2.Close(cws.StatusNormalClosure, "")
	collectInitial(t, ctx, conn2)
}

func TestRequestPermissionEndpoint(t *testing.T) {
	eng := newTestEngine(t)
	srv := newTestServer(t, eng)

	resp, err := http.Post(srv.URL+"/v1/permission/request", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Granted bool `json:"granted"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Granted)
	assert.True(t, eng.PermissionGranted())
}
