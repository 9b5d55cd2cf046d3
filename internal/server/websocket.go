package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"

	"gemma/internal/chat"
	"gemma/internal/logging"
	"gemma/internal/types"
)

// wsInbound is one client frame on the chat socket.
type wsInbound struct {
	Type        string `json:"type"` // "message", "section", "step"
	Text        string `json:"text,omitempty"`
	InlineImage string `json:"inlineImage,omitempty"`
	ImageMIME   string `json:"imageMime,omitempty"`
	Section     string `json:"section,omitempty"`
	Step        int    `json:"step,omitempty"`
}

// wsOutbound is one server frame. State rides on every frame so the
// client can render without a follow-up fetch.
type wsOutbound struct {
	Type    string         `json:"type"` // "state", "turn", "error"
	Message *types.Message `json:"message,omitempty"`
	State   *chat.State    `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleWebSocket runs the chat loop over one socket. Frames are
// processed sequentially; the controller's phase gate rejects a frame
// that arrives while a turn is still in flight.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logging.APIError("websocket accept: %v", err)
		return
	}
	defer ws.Close(websocket.StatusInternalError, "connection closed")

	ctx := r.Context()
	logging.API("websocket client connected")

	state := s.conv.State()
	if err := s.writeFrame(ctx, ws, wsOutbound{Type: "state", State: &state}); err != nil {
		return
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				logging.API("websocket client disconnected")
			} else if ctx.Err() == nil {
				logging.APIError("websocket read: %v", err)
			}
			return
		}

		var in wsInbound
		if err := json.Unmarshal(data, &in); err != nil {
			s.writeFrame(ctx, ws, wsOutbound{Type: "error", Error: "invalid frame"})
			continue
		}

		out := s.dispatchFrame(ctx, in)
		if err := s.writeFrame(ctx, ws, out); err != nil {
			return
		}
	}
}

func (s *Server) dispatchFrame(ctx context.Context, in wsInbound) wsOutbound {
	switch in.Type {
	case "message":
		if in.Text == "" {
			return wsOutbound{Type: "error", Error: "text is required"}
		}
		msg, err := s.conv.SendMessage(ctx, types.ChatPrompt{
			Text:        in.Text,
			InlineImage: in.InlineImage,
			ImageMIME:   in.ImageMIME,
		})
		if errors.Is(err, chat.ErrBusy) {
			return wsOutbound{Type: "error", Error: "a turn is already in progress"}
		}
		if err != nil {
			logging.APIError("websocket turn: %v", err)
			return wsOutbound{Type: "error", Error: "failed to process message"}
		}
		state := s.conv.State()
		return wsOutbound{Type: "turn", Message: &msg, State: &state}

	case "section":
		section, ok := types.ParseSection(in.Section)
		if !ok {
			return wsOutbound{Type: "error", Error: "unknown section"}
		}
		state := s.conv.ChangeSection(ctx, section)
		return wsOutbound{Type: "state", State: &state}

	case "step":
		if !types.ValidStep(in.Step) {
			return wsOutbound{Type: "error", Error: "unknown step"}
		}
		state := s.conv.SelectStep(ctx, types.Step(in.Step))
		return wsOutbound{Type: "state", State: &state}

	default:
		return wsOutbound{Type: "error", Error: "unknown frame type"}
	}
}

func (s *Server) writeFrame(ctx context.Context, ws *websocket.Conn, out wsOutbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		logging.APIError("marshal frame: %v", err)
		return err
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		if ctx.Err() == nil {
			logging.APIError("websocket write: %v", err)
		}
		return err
	}
	return nil
}
