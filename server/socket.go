package server

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/contrib/websocket"

	"go-juno/debug"
	"go-juno/midi"
	"go-juno/params"
)

// Socket message types, the same vocabulary the browser front end speaks.
const (
	MsgMIDI  = "midi"
	MsgParam = "param"
	MsgError = "error"
	MsgAck   = "ack"
)

type SocketMessage struct {
	Type  string   `json:"type" validate:"required,oneof=midi param"`
	Data  []int    `json:"data,omitempty" validate:"omitempty,min=1,max=3,dive,min=0,max=255"`
	Name  string   `json:"name,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

type SocketReply struct {
	Type    string  `json:"type"`
	Message string  `json:"message,omitempty"`
	Name    string  `json:"name,omitempty"`
	Value   float64 `json:"value,omitempty"`
}

func (s *Server) handleSocket(c *websocket.Conn) {
	source := "ws:" + c.RemoteAddr().String()
	debug.Log("http", "%s connected", source)
	defer debug.Log("http", "%s disconnected", source)

	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		reply := s.handleSocketMessage(source, data)
		if reply == nil {
			continue
		}
		out, _ := json.Marshal(reply)
		if err := c.WriteMessage(websocket.TextMessage, out); err != nil {
			return
		}
	}
}

// handleSocketMessage returns nil when there is nothing to report back.
func (s *Server) handleSocketMessage(source string, data []byte) *SocketReply {
	var msg SocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return &SocketReply{Type: MsgError, Message: "invalid json"}
	}
	if err := s.validator.Struct(&msg); err != nil {
		return &SocketReply{Type: MsgError, Message: fmt.Sprint(formatValidationErrors(err))}
	}

	switch msg.Type {
	case MsgMIDI:
		if len(msg.Data) == 0 {
			return &SocketReply{Type: MsgError, Message: "midi message needs data"}
		}
		raw := make([]byte, len(msg.Data))
		for i, b := range msg.Data {
			raw[i] = byte(b)
		}
		m, ok := midi.FromBytes(raw)
		if !ok || !s.deps.Router.Dispatch(source, m) {
			return &SocketReply{Type: MsgError, Message: "not a channel voice message"}
		}
		return nil

	case MsgParam:
		id, ok := params.ByName(msg.Name)
		if !ok {
			return &SocketReply{Type: MsgError, Message: "unknown parameter " + msg.Name}
		}
		if msg.Value == nil {
			return &SocketReply{Type: MsgError, Message: "param message needs value"}
		}
		v := s.deps.Controls.Set(id, *msg.Value)
		return &SocketReply{Type: MsgAck, Name: id.String(), Value: v}
	}
	return nil
}
