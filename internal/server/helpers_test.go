package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/dicepoker/internal/bot"
	"github.com/lox/dicepoker/internal/randutil"
	"github.com/lox/dicepoker/internal/roomcode"
)

// fakeViewer records everything a room sends it.
type fakeViewer struct {
	id string

	mu   sync.Mutex
	msgs []*Message
	fail bool
}

func newViewer(id string) *fakeViewer { return &fakeViewer{id: id} }

func (v *fakeViewer) ID() string { return v.id }

func (v *fakeViewer) SendMessage(msg *Message) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.fail {
		return ErrConnectionClosed
	}
	v.msgs = append(v.msgs, msg)
	return nil
}

func (v *fakeViewer) messages() []*Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*Message(nil), v.msgs...)
}

func (v *fakeViewer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.msgs)
}

// lastState decodes the most recent room_state the viewer received.
func (v *fakeViewer) lastState(t *testing.T) RoomState {
	t.Helper()
	msgs := v.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type != MessageTypeRoomState {
			continue
		}
		var s RoomState
		require.NoError(t, json.Unmarshal(msgs[i].Data, &s))
		return s
	}
	t.Fatalf("viewer %s has no room_state", v.id)
	return RoomState{}
}

func testLogger() *log.Logger { return log.New(io.Discard) }

func newTestRegistry(t *testing.T, cfg Config) (*Registry, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	rng := randutil.NewSource(42)
	logger := testLogger()

	bots, err := bot.NewFactory(cfg.BotPresets, rng, logger)
	require.NoError(t, err)

	reg := NewRegistry(cfg, RegistryDeps{
		Codes:  roomcode.NewGenerator(rng),
		Bots:   bots,
		Dice:   rng,
		Clock:  clock,
		Logger: logger,
	})
	t.Cleanup(reg.Close)
	return reg, clock
}
