package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContent_UnmarshalForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Content
	}{
		{"string", `"a\nb"`, Content{"a\nb"}},
		{"empty string is absent", `""`, nil},
		{"list", `["one", "two"]`, Content{"one", "two"}},
		{"list keeps empty blocks", `["", "x"]`, Content{"", "x"}},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Content
			require.NoError(t, json.Unmarshal([]byte(tt.in), &c))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestContent_UnmarshalRejectsObjects(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"a": 1}`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "string or a list of strings")
}

func TestContent_String(t *testing.T) {
	assert.Equal(t, "", Content(nil).String())
	assert.Equal(t, "a\nb", Blocks("a", "b").String())
	assert.Nil(t, Blocks())
}

func TestSlideDefinition_ContentInsideDeck(t *testing.T) {
	raw := `{"slides": [
		{"title": "Agenda", "content": "Topics:", "stages": [{"content": "- One"}, {"content": ["- Two", "- Three"], "mode": "replace"}]}
	]}`
	var def DeckDefinition
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	require.Len(t, def.Slides, 1)
	s := def.Slides[0]
	assert.Equal(t, Content{"Topics:"}, s.Content)
	require.Len(t, s.Stages, 2)
	assert.Equal(t, StageMode(""), s.Stages[0].Mode)
	assert.Equal(t, StageModeReplace, s.Stages[1].Mode)
	assert.Equal(t, Content{"- Two", "- Three"}, s.Stages[1].Content)
}

func TestStageMode(t *testing.T) {
	assert.True(t, StageMode("").Valid())
	assert.True(t, StageModeAppend.Valid())
	assert.False(t, StageMode("merge").Valid())
	assert.Equal(t, StageModeAccumulate, StageMode("").OrDefault())
	assert.Equal(t, StageModeReplace, StageModeReplace.OrDefault())
}

func TestParseNonInteractivePolicy(t *testing.T) {
	p, err := ParseNonInteractivePolicy("")
	require.NoError(t, err)
	assert.Equal(t, NonInteractiveAll, p)

	p, err = ParseNonInteractivePolicy(" Final ")
	require.NoError(t, err)
	assert.Equal(t, NonInteractiveFinal, p)

	_, err = ParseNonInteractivePolicy("some")
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeInvalidArgument))
}
