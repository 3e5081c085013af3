package queryimpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSubprocessResponse_FullShape(t *testing.T) {
	obj := map[string]any{
		"name":       "My Server",
		"map":        "de_dust2",
		"password":   false,
		"maxplayers": float64(20),
		"players": []any{
			map[string]any{"name": "Alice"},
			map[string]any{"name": "Bob"},
		},
	}

	v := mapSubprocessResponse(obj)

	assert.Equal(t, "My Server", *v.Name)
	assert.Equal(t, "de_dust2", *v.Map)
	assert.False(t, *v.HasPassword)
	assert.Equal(t, uint64(20), *v.PlayersMaximum)
	assert.Equal(t, uint64(2), *v.PlayersOnline)
	assert.Len(t, v.PlayerNames, 2)
	_, hasAlice := v.PlayerNames["Alice"]
	assert.True(t, hasAlice)
}

func TestMapSubprocessResponse_MissingPlayers(t *testing.T) {
	obj := map[string]any{"name": "Empty Server"}

	v := mapSubprocessResponse(obj)

	assert.Equal(t, "Empty Server", *v.Name)
	assert.Nil(t, v.PlayersOnline)
	assert.Empty(t, v.PlayerNames)
}
