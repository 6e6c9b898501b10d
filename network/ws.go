package network

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"swarm/protocol"
	"swarm/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request, waits for hello, joins the player to a room
// and forwards inputs until the socket closes.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	conn := NewConnection(ws, s.log)
	go conn.WritePump()

	hello, err := readHello(conn)
	if err != nil {
		s.reject(conn, err)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(hello.Room))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room")))
	}
	if code == "" {
		s.reject(conn, errors.New("room code required"))
		return
	}

	rm, playerID, err := s.join(code, conn, hello.Name)
	if err != nil {
		s.reject(conn, err)
		return
	}
	log := s.log.With(zap.String("room", code), zap.String("player", playerID))
	log.Debug("client connected", zap.String("remote", r.RemoteAddr))

	conn.ReadPump(func(msg []byte) {
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			log.Debug("bad message", zap.Error(err))
			return
		}
		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				log.Debug("bad input", zap.Error(err))
				return
			}
			rm.Submit(room.Input{PlayerID: playerID, Input: room.InputFromWire(in)})
		default:
			log.Debug("ignored message", zap.String("type", env.T))
		}
	})

	rm.Submit(room.Leave{PlayerID: playerID})
	_ = conn.Close()
	log.Debug("client disconnected")
}

func readHello(conn *Connection) (protocol.Hello, error) {
	msg, err := conn.ReadFirst()
	if err != nil {
		return protocol.Hello{}, fmt.Errorf("read hello: %w", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, fmt.Errorf("expected %s, got %q", protocol.MsgHello, env.T)
	}
	hello, err := protocol.DecodePayload[protocol.Hello](env)
	if err != nil {
		return protocol.Hello{}, fmt.Errorf("decode hello: %w", err)
	}
	if hello.V != protocol.Version {
		return protocol.Hello{}, fmt.Errorf("unsupported protocol version %d", hello.V)
	}
	return hello, nil
}

// join submits a Join and waits for the room's answer. A room that stopped
// between lookup and submit is replaced once.
func (s *Server) join(code string, conn *Connection, name string) (*room.Room, string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		rm, err := s.rooms.GetOrCreateRoom(code)
		if err != nil {
			return nil, "", err
		}
		reply := make(chan room.JoinResult, 1)
		if !rm.Submit(room.Join{Conn: conn, Name: name, Reply: reply}) {
			continue
		}
		select {
		case res := <-reply:
			if res.Err != nil {
				return nil, "", res.Err
			}
			return rm, res.PlayerID, nil
		case <-rm.Done():
			continue
		}
	}
	return nil, "", room.ErrRoomStopped
}

func (s *Server) reject(conn *Connection, err error) {
	s.log.Debug("client rejected", zap.Error(err))
	if b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{Message: err.Error()}); encErr == nil {
		_ = conn.Send(b)
	}
	_ = conn.Close()
}
