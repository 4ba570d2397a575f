package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionJSON(t *testing.T) {
	a := NewAttack(1, 4, 5).At(1700000000000)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type": "ATTACK",
		"playerId": 1,
		"timestamp": 1700000000000,
		"payload": {"fromTerritoryId": 4, "toTerritoryId": 5}
	}`, string(data))

	var decoded Action
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, a, decoded)
}

func TestActionJSONWithoutPayload(t *testing.T) {
	data, err := json.Marshal(NewEndTurn(0))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"END_TURN","playerId":0,"timestamp":0}`, string(data))

	var decoded Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"END_PHASE","playerId":2}`), &decoded))
	require.Equal(t, NewEndPhase(2), decoded)
}

func TestActionJSONRejectsMalformed(t *testing.T) {
	var a Action
	err := json.Unmarshal([]byte(`{"type":"TELEPORT","playerId":0}`), &a)
	require.ErrorIs(t, err, ErrMalformedAction)

	err = json.Unmarshal([]byte(`{"type":"BUILD","playerId":0}`), &a)
	require.ErrorIs(t, err, ErrMalformedAction)

	err = json.Unmarshal([]byte(`{"type":"RECRUIT","playerId":0,"payload":{"territoryId":"x"}}`), &a)
	require.ErrorIs(t, err, ErrMalformedAction)
}

func TestValidationErrorReason(t *testing.T) {
	err := reject(NewBuild(0, 1, BuildingFarm), ErrInsufficientResources)
	require.Equal(t, "invalid BUILD by player 0: insufficient resources", err.Error())
	require.Equal(t, "insufficient resources", ReasonOf(err))
	require.ErrorIs(t, err, ErrInsufficientResources)
}

func TestResourceArithmetic(t *testing.T) {
	have := Resources{Gold: 100, Wood: 10}
	require.True(t, HasEnoughResources(have, Resources{Gold: 100}))
	require.False(t, HasEnoughResources(have, Resources{Gold: 50, Stone: 1}))

	sum := AddResources(have, Resources{Food: 5})
	require.Equal(t, Resources{Gold: 100, Wood: 10, Food: 5}, sum)

	diff := SubtractResources(sum, Resources{Food: 8})
	clamped, starving := ClampFood(diff)
	require.True(t, starving)
	require.Zero(t, clamped.Food)

	_, starving = ClampFood(sum)
	require.False(t, starving)
}
