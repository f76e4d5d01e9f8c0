package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"craftage.ai/configs"
	"craftage.ai/internal/protocol"
	"craftage.ai/internal/sim/catalogs"
	"craftage.ai/internal/sim/tuning"
	"craftage.ai/internal/sim/world"
)

func startServer(t *testing.T) (*world.World, string) {
	t.Helper()
	cats, err := catalogs.LoadFS(configs.FS)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{ID: "ws_test", Tuning: tuning.Defaults(), ManualTicks: true}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()

	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	srv := httptest.NewServer(NewServer(w, v, log.New(io.Discard, "", 0)).Handler())
	t.Cleanup(srv.Close)
	return w, "ws" + strings.TrimPrefix(srv.URL, "http")
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, url string) *client {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(v any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(v); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *client) sendRaw(s string) {
	c.t.Helper()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *client) read(v any) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		c.t.Fatalf("decode base: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(msg, v); err != nil {
			c.t.Fatalf("unmarshal %s: %v", base.Type, err)
		}
	}
	return base.Type
}

func (c *client) hello(name, resume string) protocol.WelcomeMsg {
	c.t.Helper()
	h := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: name}
	if resume != "" {
		h.Auth = &protocol.HelloAuth{PlayerID: resume}
	}
	c.send(h)
	var welcome protocol.WelcomeMsg
	if typ := c.read(&welcome); typ != protocol.TypeWelcome {
		c.t.Fatalf("expected WELCOME, got %s", typ)
	}
	names := map[string]bool{}
	for i := 0; i < 6; i++ {
		var cat protocol.CatalogMsg
		if typ := c.read(&cat); typ != protocol.TypeCatalog {
			c.t.Fatalf("expected CATALOG, got %s", typ)
		}
		names[cat.Name] = true
	}
	for _, n := range []string{"ages", "resources", "items", "recipes", "consumables", "tools"} {
		if !names[n] {
			c.t.Fatalf("missing catalog %s", n)
		}
	}
	return welcome
}

func TestServer_HandshakeAndCraftFlow(t *testing.T) {
	_, url := startServer(t)
	c := dial(t, url)

	welcome := c.hello("alice", "")
	if welcome.PlayerID == "" || welcome.State.AgeName != "STONE AGE" || welcome.WorldParams.TickRateHz != 10 {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}
	if welcome.State.Inventory["wood"] != 0 || len(welcome.Ages) != 5 {
		t.Fatalf("unexpected welcome state: %+v", welcome.State)
	}

	for _, node := range []string{"tree", "stone"} {
		c.send(protocol.GatherMsg{Type: protocol.TypeGather, ProtocolVersion: protocol.Version, NodeID: node})
		var res protocol.ResultMsg
		if typ := c.read(&res); typ != protocol.TypeResult {
			t.Fatalf("gather %s: expected RESULT, got %s", node, typ)
		}
	}

	c.send(protocol.CraftMsg{Type: protocol.TypeCraft, ProtocolVersion: protocol.Version, ReqID: "r1", RecipeID: "axe"})
	var res protocol.ResultMsg
	if typ := c.read(&res); typ != protocol.TypeResult {
		t.Fatalf("expected RESULT, got %s", typ)
	}
	if res.ReqID != "r1" || res.Produced["axe"] != 1 || res.State.Inventory["axe"] != 1 || res.State.Inventory["stone"] != 1 {
		t.Fatalf("unexpected craft result: %+v", res)
	}

	c.send(protocol.CraftMsg{Type: protocol.TypeCraft, ProtocolVersion: protocol.Version, ReqID: "r2", RecipeID: "hut"})
	var em protocol.ErrorMsg
	if typ := c.read(&em); typ != protocol.TypeError {
		t.Fatalf("expected ERROR, got %s", typ)
	}
	if em.Code != protocol.ErrNoResource || em.Shortfall["wood"] != 10 || em.Shortfall["stone"] != 4 {
		t.Fatalf("unexpected shortfall error: %+v", em)
	}

	c.send(protocol.CraftMsg{Type: protocol.TypeCraft, ProtocolVersion: protocol.Version, ReqID: "r3", RecipeID: "bronze_axe"})
	em = protocol.ErrorMsg{}
	c.read(&em)
	if em.Code != protocol.ErrAgeLocked || em.RequiredAge == nil || *em.RequiredAge != 1 {
		t.Fatalf("unexpected age error: %+v", em)
	}

	c.send(protocol.ConsumeMsg{Type: protocol.TypeConsume, ProtocolVersion: protocol.Version, ReqID: "r4", ConsumableID: "ham"})
	em = protocol.ErrorMsg{}
	c.read(&em)
	if em.Code != protocol.ErrUnknownConsumable || em.ReqID != "r4" {
		t.Fatalf("unexpected consumable error: %+v", em)
	}

	c.sendRaw(`{"type":"CRAFT","protocol_version":"1.0","recipe_id":"Axe!"}`)
	em = protocol.ErrorMsg{}
	c.read(&em)
	if em.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("expected bad request, got %+v", em)
	}

	c.send(protocol.StateMsg{Type: protocol.TypeState, ProtocolVersion: protocol.Version, ReqID: "r5"})
	res = protocol.ResultMsg{}
	c.read(&res)
	if res.Kind != protocol.TypeState || res.State.Inventory["axe"] != 1 {
		t.Fatalf("unexpected state result: %+v", res)
	}
}

func TestServer_ResumeAndRejectUnknownPlayer(t *testing.T) {
	_, url := startServer(t)

	first := dial(t, url)
	welcome := first.hello("alice", "")
	_ = first.conn.Close()

	second := dial(t, url)
	resumed := second.hello("", welcome.PlayerID)
	if resumed.PlayerID != welcome.PlayerID {
		t.Fatalf("expected resume of %s, got %s", welcome.PlayerID, resumed.PlayerID)
	}

	third := dial(t, url)
	third.send(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, Auth: &protocol.HelloAuth{PlayerID: "P000404"}})
	var em protocol.ErrorMsg
	if typ := third.read(&em); typ != protocol.TypeError || em.Code != protocol.ErrPlayerNotFound {
		t.Fatalf("expected player not found, got %s %+v", typ, em)
	}
}

func TestServer_RejectsNonHello(t *testing.T) {
	_, url := startServer(t)
	c := dial(t, url)
	c.send(protocol.StateMsg{Type: protocol.TypeState, ProtocolVersion: protocol.Version})
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := c.conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
