package websocket

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

func TestEncodeRecent(t *testing.T) {
	at := time.UnixMilli(1760000000000).UTC()
	payload, err := encodeRecent([]domain.SpinEvent{
		{ID: "s1", PrincipalID: "u1", PrizeLabel: "gold", OccurredAt: at},
		{ID: "s2", PrincipalID: "u2", PrizeLabel: domain.NoPrizeLabel, OccurredAt: at},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"recentEvents","events":[
		{"id":"s1","userId":"u1","prize":"gold","timestamp":1760000000000},
		{"id":"s2","userId":"u2","prize":"N/A","timestamp":1760000000000}
	]}`, string(payload))
}

func TestEncodeRecent_EmptyIsArray(t *testing.T) {
	payload, err := encodeRecent(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"recentEvents","events":[]}`, string(payload))
}

func TestEncodeDistribution(t *testing.T) {
	payload, err := encodeDistribution(domain.PrizeDistribution{"gold": 3, "silver": 1})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"distributionStats","raw":{"gold":3,"silver":1},"entries":[
		{"label":"gold","count":3,"percentage":75},
		{"label":"silver","count":1,"percentage":25}
	],"total":4}`, string(payload))
}

func TestEncodeDistribution_Empty(t *testing.T) {
	payload, err := encodeDistribution(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"distributionStats","raw":{},"entries":[],"total":0}`, string(payload))
}

func TestEncodeError(t *testing.T) {
	payload, err := encodeError(domain.FeedRecentEvents, errors.New("store unavailable"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","feed":"recentEvents","error":"store unavailable"}`, string(payload))
}
