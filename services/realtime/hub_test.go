package realtimesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/fitsenior/backend/core"
)

func newTestServer(hub *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.ServeClient(conn, r.URL.Query().Get("user"))
	}))
}

func dial(srv *httptest.Server, userID string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func waitConnected(hub *Hub, userID string, n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connected(userID) == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func readEvent(conn *websocket.Conn) (map[string]interface{}, error) {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var evt map[string]interface{}
	err = json.Unmarshal(data, &evt)
	return evt, err
}

func TestHub(t *testing.T) {
	Convey("Given a running hub", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		hub := NewHub(nil)
		go hub.Run(ctx)
		srv := newTestServer(hub)

		Reset(func() {
			srv.Close()
			cancel()
		})

		Convey("When two users are connected", func() {
			alice, err := dial(srv, "alice")
			So(err, ShouldBeNil)
			defer alice.Close()
			bob, err := dial(srv, "bob")
			So(err, ShouldBeNil)
			defer bob.Close()
			So(waitConnected(hub, "alice", 1), ShouldBeTrue)
			So(waitConnected(hub, "bob", 1), ShouldBeTrue)

			Convey("An event reaches its recipients only", func() {
				err := hub.Publish(ctx, core.Event{
					Type:       core.EventMessageNew,
					Recipients: []string{"alice"},
					Payload:    map[string]string{"content": "hi"},
				})
				So(err, ShouldBeNil)

				evt, err := readEvent(alice)
				So(err, ShouldBeNil)
				So(evt["type"], ShouldEqual, core.EventMessageNew)
				So(evt["payload"], ShouldResemble, map[string]interface{}{"content": "hi"})
				So(evt, ShouldNotContainKey, "recipients")

				_ = bob.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
				_, _, err = bob.ReadMessage()
				So(err, ShouldNotBeNil)
			})

			Convey("A closed connection is unregistered", func() {
				So(alice.Close(), ShouldBeNil)
				So(waitConnected(hub, "alice", 0), ShouldBeTrue)
				So(hub.Connected("bob"), ShouldEqual, 1)
			})
		})

		Convey("Every connection of a user receives the event", func() {
			tab1, err := dial(srv, "carol")
			So(err, ShouldBeNil)
			defer tab1.Close()
			tab2, err := dial(srv, "carol")
			So(err, ShouldBeNil)
			defer tab2.Close()
			So(waitConnected(hub, "carol", 2), ShouldBeTrue)

			So(hub.Publish(ctx, core.Event{Type: core.EventForumMessage, Recipients: []string{"carol"}}), ShouldBeNil)
			for _, conn := range []*websocket.Conn{tab1, tab2} {
				evt, err := readEvent(conn)
				So(err, ShouldBeNil)
				So(evt["type"], ShouldEqual, core.EventForumMessage)
			}
		})
	})
}

func TestHubDropsSlowClients(t *testing.T) {
	Convey("Given a client whose send buffer is full", t, func() {
		hub := NewHub(nil)
		c := &Client{hub: hub, send: make(chan []byte, 1), userID: "slow"}
		hub.clients["slow"] = map[*Client]bool{c: true}
		c.send <- []byte("pending")

		Convey("Dispatching an event drops it", func() {
			hub.dispatch(core.Event{Type: core.EventMessageRead, Recipients: []string{"slow"}})
			So(hub.Connected("slow"), ShouldEqual, 0)

			<-c.send
			_, open := <-c.send
			So(open, ShouldBeFalse)
		})
	})
}

func TestEventEnvelope(t *testing.T) {
	Convey("Given an encoded event", t, func() {
		data, err := encodeEvent(core.Event{
			Type:       core.EventMessageNew,
			Recipients: []string{"u1", "u2"},
			Payload:    map[string]interface{}{"id": "m1"},
		})
		So(err, ShouldBeNil)

		Convey("Decoding keeps type, recipients and raw payload", func() {
			evt, err := decodeEvent(data)
			So(err, ShouldBeNil)
			So(evt.Type, ShouldEqual, core.EventMessageNew)
			So(evt.Recipients, ShouldResemble, []string{"u1", "u2"})
			So(string(evt.Payload.(json.RawMessage)), ShouldEqual, `{"id":"m1"}`)
		})

		Convey("Malformed events are rejected", func() {
			_, err := decodeEvent([]byte(`{"payload":{}}`))
			So(err, ShouldNotBeNil)
			_, err = decodeEvent([]byte(`nope`))
			So(err, ShouldNotBeNil)
		})
	})
}
