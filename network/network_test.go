package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"swarm/game"
	"swarm/protocol"
	"swarm/records"
	"swarm/room"
)

func newTestServer(t *testing.T, runs records.Storage) (*httptest.Server, *room.Manager) {
	t.Helper()
	m := room.NewManager(room.Options{
		Seed:       42,
		MapWidth:   40,
		MapHeight:  40,
		MaxPlayers: 4,
		Game:       game.DefaultConfig(),
	})
	srv := httptest.NewServer(NewServer(m, runs, nil).Routes())
	t.Cleanup(func() {
		srv.Close()
		m.Shutdown()
	})
	return srv, m
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func writeEnvelope(t *testing.T, c *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// waitFor reads until an envelope of type typ arrives.
func waitFor(t *testing.T, c *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.T == typ {
			return env
		}
	}
}

func TestWebSocketJoinAndSnapshot(t *testing.T) {
	srv, m := newTestServer(t, nil)
	c := dial(t, srv, "")
	writeEnvelope(t, c, protocol.MsgHello, protocol.Hello{V: protocol.Version, Name: "ada", Room: "abc123"})

	w, err := protocol.DecodePayload[protocol.Welcome](waitFor(t, c, protocol.MsgWelcome))
	if err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if w.Room != "ABC123" || w.PlayerID == "" || w.Map.Seed != 42 {
		t.Fatalf("welcome = %+v", w)
	}
	if _, ok := m.Get("ABC123"); !ok {
		t.Fatalf("room not created on first join")
	}

	state, err := protocol.DecodePayload[protocol.State](waitFor(t, c, protocol.MsgState))
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	p, ok := state.Players[w.PlayerID]
	if !ok || p.Name != "ada" {
		t.Fatalf("snapshot players = %+v", state.Players)
	}
}

func TestWebSocketInputMovesPlayer(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := dial(t, srv, "?room=MOVE01")
	writeEnvelope(t, c, protocol.MsgHello, protocol.Hello{V: protocol.Version})
	w, _ := protocol.DecodePayload[protocol.Welcome](waitFor(t, c, protocol.MsgWelcome))

	writeEnvelope(t, c, protocol.MsgInput, protocol.Input{AimX: 1, Sequence: 7})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, err := protocol.DecodePayload[protocol.State](waitFor(t, c, protocol.MsgState))
		if err != nil {
			t.Fatalf("state: %v", err)
		}
		if state.Players[w.PlayerID].LastSeq == 7 {
			return
		}
	}
	t.Fatalf("input sequence never acknowledged")
}

func TestWebSocketRejectsMissingHello(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := dial(t, srv, "?room=REJ001")
	writeEnvelope(t, c, protocol.MsgInput, protocol.Input{})

	e, err := protocol.DecodePayload[protocol.Error](waitFor(t, c, protocol.MsgError))
	if err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if !strings.Contains(e.Message, "hello") {
		t.Fatalf("error = %q", e.Message)
	}
}

func TestWebSocketRejectsMissingRoom(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := dial(t, srv, "")
	writeEnvelope(t, c, protocol.MsgHello, protocol.Hello{V: protocol.Version})
	e, _ := protocol.DecodePayload[protocol.Error](waitFor(t, c, protocol.MsgError))
	if !strings.Contains(e.Message, "room") {
		t.Fatalf("error = %q", e.Message)
	}
}

func TestWebSocketDisconnectRemovesRoom(t *testing.T) {
	srv, m := newTestServer(t, nil)
	c := dial(t, srv, "?room=BYE001")
	writeEnvelope(t, c, protocol.MsgHello, protocol.Hello{V: protocol.Version})
	waitFor(t, c, protocol.MsgWelcome)
	c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := m.Get("BYE001"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room kept after last player disconnected")
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", resp.StatusCode, body)
	}
}

func TestRoomsAPI(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var created map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || len(created["code"]) != 6 {
		t.Fatalf("create = %d %v", resp.StatusCode, created)
	}

	resp, err = http.Get(srv.URL + "/api/rooms/" + strings.ToLower(created["code"]))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var info room.RoomInfo
	_ = json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || info.Code != created["code"] || info.Seed != 42 {
		t.Fatalf("room = %d %+v", resp.StatusCode, info)
	}

	resp, err = http.Get(srv.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rooms []room.RoomInfo
	_ = json.NewDecoder(resp.Body).Decode(&rooms)
	resp.Body.Close()
	if len(rooms) != 1 {
		t.Fatalf("rooms = %+v", rooms)
	}

	resp, err = http.Get(srv.URL + "/api/rooms/NOPE00")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing room status = %d", resp.StatusCode)
	}
}

func TestRunsAPI(t *testing.T) {
	store, err := records.NewJSONStore(filepath.Join(t.TempDir(), "runs.json"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	for i, score := range []int{40, 90, 10} {
		run := records.NewRun("ROOM0"+string(rune('A'+i)), int64(i), 2, score, 3, []string{"p"})
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	srv, _ := newTestServer(t, store)

	resp, err := http.Get(srv.URL + "/api/runs?limit=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var runs []records.Run
	_ = json.NewDecoder(resp.Body).Decode(&runs)
	resp.Body.Close()
	if len(runs) != 2 || runs[0].Score != 90 || runs[1].Score != 40 {
		t.Fatalf("runs = %+v", runs)
	}

	resp, err = http.Get(srv.URL + "/api/runs/" + runs[0].ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	var one records.Run
	_ = json.NewDecoder(resp.Body).Decode(&one)
	resp.Body.Close()
	if one.ID != runs[0].ID {
		t.Fatalf("run = %+v", one)
	}

	resp, err = http.Get(srv.URL + "/api/runs?limit=x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", resp.StatusCode)
	}
}

func TestRunsAPIWithoutStore(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var runs []records.Run
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Fatalf("runs = %v, want empty list", runs)
	}
}

func TestBonusAPISpawnsEnemies(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c := dial(t, srv, "?room=BONUS1")
	writeEnvelope(t, c, protocol.MsgHello, protocol.Hello{V: protocol.Version})
	waitFor(t, c, protocol.MsgWelcome)

	post := func(path, body string) int {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post %s: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if code := post("/api/rooms/NOPE00/bonus", `{"enemyType":"runner","count":3}`); code != http.StatusNotFound {
		t.Fatalf("missing room status = %d", code)
	}
	if code := post("/api/rooms/BONUS1/bonus", `{"enemyType":"dragon","count":3}`); code != http.StatusBadRequest {
		t.Fatalf("unknown type status = %d", code)
	}
	if code := post("/api/rooms/BONUS1/bonus", `{"enemyType":"runner","count":0}`); code != http.StatusBadRequest {
		t.Fatalf("zero count status = %d", code)
	}
	if code := post("/api/rooms/bonus1/bonus", `{"enemyType":"runner","count":3}`); code != http.StatusAccepted {
		t.Fatalf("bonus status = %d", code)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		env := waitFor(t, c, protocol.MsgState)
		st, err := protocol.DecodePayload[protocol.State](env)
		if err != nil {
			t.Fatalf("decode state: %v", err)
		}
		runners := 0
		for _, e := range st.Enemies {
			if e.Type == string(game.Runner) {
				runners++
			}
		}
		if runners == 3 {
			return
		}
	}
	t.Fatalf("bonus runners never appeared in a snapshot")
}
