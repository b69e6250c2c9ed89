package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vsa/internal/calc/vsa"
)

func TestParseLayers(t *testing.T) {
	layers, err := parseLayers([]string{"5:180", "10:300", "15,5:600:2.0"})
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Equal(t, "1", layers[0].ID)
	assert.Equal(t, vsa.Num(15.5), layers[2].D)
	assert.Equal(t, vsa.Num(600), layers[2].Vs)
	assert.Equal(t, vsa.Num(2.0), layers[2].Rho)
	assert.False(t, layers[0].Rho.IsSet())
}

func TestParseLayersErrors(t *testing.T) {
	tests := map[string][]string{
		"empty":       nil,
		"no velocity": {"5"},
		"too many":    {"5:180:1:2"},
		"not number":  {"5:fast"},
		"negative":    {"-5:180"},
	}
	for name, args := range tests {
		_, err := parseLayers(args)
		assert.Error(t, err, name)
	}

	many := make([]string, maxLayers+1)
	for i := range many {
		many[i] = "1:100"
	}
	_, err := parseLayers(many)
	assert.Error(t, err)
}

func TestHandle(t *testing.T) {
	b := &bot{}

	assert.Empty(t, b.handle("hello"))
	assert.Contains(t, b.handle("/help"), "/vsa 5:180")
	assert.Contains(t, b.handle("/start@VsaBot"), "/presets")
	assert.Equal(t, "Unknown command. Send /help.", b.handle("/beam 1"))

	reply := b.handle("/vsa 5:180 10:300 15:600")
	assert.Contains(t, reply, "H = 30.0 m")
	assert.Contains(t, reply, "<pre>")
	assert.Contains(t, reply, "430.0")
	assert.Contains(t, reply, "458.4")

	assert.Contains(t, b.handle("/vsa 5:abc"), "Invalid profile")

	reply = b.handle("/preset ozkan")
	assert.Contains(t, reply, "<b>Özkan</b>")
	assert.Contains(t, reply, "Diff")

	assert.Contains(t, b.handle("/preset"), "Usage")
	assert.Contains(t, b.handle("/preset atlantis"), "No such preset")

	reply = b.handle("/presets")
	assert.Contains(t, reply, "Takabatake")
	assert.Contains(t, reply, "Dulkadiroğlu (4621)")
}

func TestClient(t *testing.T) {
	var sent map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"message_id":1,"chat":{"id":42},"text":"/help"}}]}`))
		case "/botTOKEN/sendMessage":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL, "TOKEN")
	updates, err := c.getUpdates(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(42), updates[0].Message.Chat.ID)

	require.NoError(t, c.sendMessage(context.Background(), 42, "hi"))
	assert.Equal(t, "hi", sent["text"])
	assert.Equal(t, "HTML", sent["parse_mode"])
}

func TestClientTelegramError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getUpdates") {
			w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "bad")
	_, err := c.getUpdates(context.Background(), 0)
	assert.ErrorContains(t, err, "Unauthorized")
	assert.Error(t, c.sendMessage(context.Background(), 1, "x"))
}
