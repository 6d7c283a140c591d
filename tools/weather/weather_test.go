package weather_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/parleyhq/parley/tools/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lookup(t *testing.T) {
	tool, err := weather.New()
	require.NoError(t, err)

	assert.Equal(t, weather.ToolName, tool.Name())
	assert.NotEmpty(t, tool.Description())
	require.NotNil(t, tool.Parameters())

	js, err := json.Marshal(tool.Parameters())
	require.NoError(t, err)
	assert.Contains(t, string(js), `"city"`)

	res, err := tool.Call(context.Background(), `{"city":"Lyon"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"city":"Lyon","conditions":"Sunny, 24C"}`, res)

	_, err = tool.Call(context.Background(), `{"city":"Atlantis"}`)
	require.Error(t, err)

	_, err = tool.Call(context.Background(), `{"city":""}`)
	require.Error(t, err)
}

func Test_Lookup_CustomConditions(t *testing.T) {
	tool, err := weather.New()
	require.NoError(t, err)
	tool = tool.WithConditions(map[string]string{"gotham": "Foggy, 12C"})

	out, err := tool.Run(context.Background(), &weather.LookupRequest{City: "Gotham"})
	require.NoError(t, err)
	assert.Equal(t, "Foggy, 12C", out.Conditions)
}
