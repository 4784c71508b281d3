package messages

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMovePayload(t *testing.T) {
	var in InboundMessage
	raw := `{"event":"MOVE_MAIN","requestId":"r1","payload":{"gameId":"g1","move":{"from":"e2","to":"e4"}}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &in))

	var p MovePayload
	require.NoError(t, in.Decode(&p))
	assert.Equal(t, "r1", in.RequestID)
	assert.Equal(t, "g1", p.GameID)
	assert.Equal(t, "e2e4", p.Move.UCI())
}

func TestDecodeRejectsMissingGameID(t *testing.T) {
	in := InboundMessage{Event: EventResign, Payload: json.RawMessage(`{}`)}
	var p GamePayload
	assert.ErrorContains(t, in.Decode(&p), "missing gameId")

	in = InboundMessage{Event: EventJoin}
	var j JoinPayload
	assert.ErrorContains(t, in.Decode(&j), "missing payload")

	in = InboundMessage{Event: EventJoin, Payload: json.RawMessage(`[1]`)}
	assert.ErrorContains(t, in.Decode(&j), "invalid JOIN payload")
}

func TestAckEncoding(t *testing.T) {
	data, err := json.Marshal(Nack("r2", errors.New("not your turn")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ACK","payload":{"requestId":"r2","ok":false,"error":"not your turn"}}`, string(data))

	data, err = json.Marshal(Ack("r3", map[string]string{"role": "white"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ACK","payload":{"requestId":"r3","ok":true,"result":{"role":"white"}}}`, string(data))
}
