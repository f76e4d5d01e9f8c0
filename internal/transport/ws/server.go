package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/ruleerr"
	"craftage.ai/internal/sim/world"
)

const requestTimeout = 5 * time.Second

type Server struct {
	world     *world.World
	validator *protocol.Validator
	log       *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, v *protocol.Validator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[ws] ", log.LstdFlags)
	}
	return &Server{
		world:     w,
		validator: v,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, maxQ := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		out := make(chan []byte, maxQ)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			reply := s.handleMessage(ctx, playerID, msg)
			if reply == nil {
				continue
			}
			b, err := json.Marshal(reply)
			if err != nil {
				s.log.Printf("marshal reply: %v", err)
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
		}
		s.log.Printf("player %s disconnected", playerID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, maxQ int) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", 0
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return "", 0
	}
	if err := s.validator.Validate(protocol.TypeHello, msg); err != nil {
		closePolicy(conn, "bad HELLO")
		return "", 0
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", 0
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return "", 0
	}

	maxQ = hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}

	// Optional: resume an existing player (reconnect or restored snapshot).
	resumeID := ""
	if hello.Auth != nil {
		resumeID = strings.TrimSpace(hello.Auth.PlayerID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	res, err := s.world.RequestJoin(ctx, hello.PlayerName, resumeID)
	if err != nil {
		_ = writeJSON(conn, errorMsg("", err))
		closePolicy(conn, "join failed")
		return "", 0
	}

	cats := s.world.Catalogs()
	tune := s.world.Tuning()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        res.PlayerID,
		WorldParams: protocol.WorldParams{
			TickRateHz:     tune.TickRateHz,
			WorldSize:      tune.World.WorldSize,
			TileSize:       tune.World.TileSize,
			VisionRadius:   tune.World.VisionRadius,
			SyncIntervalMs: tune.World.SyncIntervalMs,
		},
		Catalogs: catalogDigests(cats),
		Ages:     cats.Ages.Names,
		State:    world.StateOf(cats, res.State),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return "", 0
	}
	for _, c := range catalogMsgs(cats) {
		if err := writeJSON(conn, c); err != nil {
			return "", 0
		}
	}
	s.log.Printf("player %s joined (resumed=%v)", res.PlayerID, res.Resumed)
	return res.PlayerID, maxQ
}

// handleMessage answers one request with a RESULT or ERROR message. Unknown
// message types are ignored.
func (s *Server) handleMessage(parent context.Context, playerID string, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return badRequest("", "malformed json")
	}
	switch base.Type {
	case protocol.TypeCraft, protocol.TypeConsume, protocol.TypeGather, protocol.TypeState:
	default:
		return nil
	}
	if err := s.validator.Validate(base.Type, msg); err != nil {
		return badRequest("", err.Error())
	}
	if base.ProtocolVersion != protocol.Version {
		return badRequest("", "bad protocol_version")
	}

	ctx, cancel := context.WithTimeout(parent, requestTimeout)
	defer cancel()
	cats := s.world.Catalogs()

	switch base.Type {
	case protocol.TypeCraft:
		var m protocol.CraftMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return badRequest("", err.Error())
		}
		out, err := s.world.RequestCraft(ctx, playerID, m.RecipeID)
		if err != nil {
			return errorMsg(m.ReqID, err)
		}
		return protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			ReqID:           m.ReqID,
			Kind:            protocol.TypeCraft,
			Ref:             out.Result.RecipeID,
			Consumed:        out.Result.Consumed,
			Produced:        out.Result.Produced,
			State:           world.StateOf(cats, out.State),
			Events:          out.Events,
		}

	case protocol.TypeConsume:
		var m protocol.ConsumeMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return badRequest("", err.Error())
		}
		out, err := s.world.RequestConsume(ctx, playerID, m.ConsumableID)
		if err != nil {
			return errorMsg(m.ReqID, err)
		}
		d := out.Result.Delta
		return protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			ReqID:           m.ReqID,
			Kind:            protocol.TypeConsume,
			Ref:             out.Result.ConsumableID,
			Consumed:        map[string]int{out.Result.ResourceKey: 1},
			Delta:           &protocol.VitalsDelta{Health: d.Health, Hunger: d.Hunger, Stamina: d.Stamina},
			State:           world.StateOf(cats, out.State),
			Events:          out.Events,
		}

	case protocol.TypeGather:
		var m protocol.GatherMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return badRequest("", err.Error())
		}
		out, err := s.world.RequestGather(ctx, playerID, m.NodeID)
		if err != nil {
			return errorMsg(m.ReqID, err)
		}
		return protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			ReqID:           m.ReqID,
			Kind:            protocol.TypeGather,
			Ref:             out.NodeID,
			Produced:        map[string]int{out.Item: out.Amount},
			State:           world.StateOf(cats, out.State),
			Events:          out.Events,
		}

	default: // STATE
		var m protocol.StateMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return badRequest("", err.Error())
		}
		out, err := s.world.RequestPlayer(ctx, playerID)
		if err != nil {
			return errorMsg(m.ReqID, err)
		}
		return protocol.ResultMsg{
			Type:            protocol.TypeResult,
			ProtocolVersion: protocol.Version,
			ReqID:           m.ReqID,
			Kind:            protocol.TypeState,
			State:           world.StateOf(cats, out.State),
			Events:          out.Events,
		}
	}
}

func badRequest(reqID, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Code:            protocol.ErrProtoBadRequest,
		Message:         message,
	}
}

// errorMsg maps a world or rule error to its wire form.
func errorMsg(reqID string, err error) protocol.ErrorMsg {
	m := protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		Code:            ruleerr.Code(err),
		Message:         err.Error(),
	}
	var (
		short  *ruleerr.InsufficientResourcesError
		locked *ruleerr.AgeLockedError
	)
	switch {
	case errors.Is(err, world.ErrPlayerNotFound):
		m.Code = protocol.ErrPlayerNotFound
	case errors.Is(err, context.DeadlineExceeded):
		m.Code = protocol.ErrWorldBusy
	case errors.As(err, &short):
		m.Shortfall = short.Shortfall
	case errors.As(err, &locked):
		age := locked.Required
		m.RequiredAge = &age
	}
	return m
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
