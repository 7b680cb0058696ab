package expressions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/typeview/pkg/schema"
)

func TestNewGoJQEngine(t *testing.T) {
	e := NewGoJQEngine()
	assert.Equal(t, "jq", e.Name())
}

func TestGoJQ_RendererData(t *testing.T) {
	e := NewGoJQEngine()
	data := rendererData(1, 3)

	t.Run("field", func(t *testing.T) {
		out, err := e.Evaluate(context.Background(), `.slide.title`, data)
		require.NoError(t, err)
		assert.Equal(t, "Agenda", out)
	})

	t.Run("stage arithmetic", func(t *testing.T) {
		out, err := e.Evaluate(context.Background(), `"\(.stage + 1)/\(.total_stages)"`, data)
		require.NoError(t, err)
		assert.Equal(t, "2/3", out)
	})

	t.Run("reveal up to stage", func(t *testing.T) {
		out, err := e.Evaluate(context.Background(), `.vars.topics[:.stage+1] | map("* " + .)`, data)
		require.NoError(t, err)
		assert.Equal(t, []any{"* intro", "* design"}, out)
	})

	t.Run("filter", func(t *testing.T) {
		out, err := e.Evaluate(context.Background(), `[.vars.scores[] | select(.score > 80) | .name]`, data)
		require.NoError(t, err)
		assert.Equal(t, []any{"alice", "bob"}, out)
	})
}

func TestGoJQ_MultipleOutputs(t *testing.T) {
	e := NewGoJQEngine()

	out, err := e.Evaluate(context.Background(), `.vars.topics[]`, rendererData(0, 1))
	require.NoError(t, err)
	assert.Equal(t, []any{"intro", "design", "demo"}, out)

	out, err = e.Evaluate(context.Background(), `empty`, rendererData(0, 1))
	require.NoError(t, err)
	assert.Nil(t, out)

	all, err := e.EvaluateAll(context.Background(), `.stage`, rendererData(0, 1))
	require.NoError(t, err)
	assert.Equal(t, []any{0}, all)
}

func TestGoJQ_Errors(t *testing.T) {
	e := NewGoJQEngine()

	_, err := e.Evaluate(context.Background(), "", nil)
	assert.True(t, schema.HasCode(err, schema.ErrCodeValidation))

	err = e.Compile(`.[`)
	assert.True(t, schema.HasCode(err, schema.ErrCodeValidation))

	_, err = e.Evaluate(context.Background(), `.slide.title + 1`, rendererData(0, 1))
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeExecution))
}

func TestGoJQ_Sandbox_NoEnvAccess(t *testing.T) {
	e := NewGoJQEngine()

	out, err := e.Evaluate(context.Background(), `$ENV | length`, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out)
}

func TestNormalizeForJQ(t *testing.T) {
	in := map[string]any{
		"a": int64(1),
		"b": []string{"x", "y"},
		"c": []any{int32(2), float32(1.5)},
	}
	assert.Equal(t, map[string]any{
		"a": 1,
		"b": []any{"x", "y"},
		"c": []any{2, float64(1.5)},
	}, normalizeForJQ(in))
	assert.Nil(t, normalizeForJQ(nil))
}
