package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duetcast/duetcast/store"
)

func TestFilterMatch(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	conversation := &store.Conversation{
		Topic:     "Is pineapple on pizza acceptable?",
		CreatedTs: 1724800000,
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{`topic.contains("pizza")`, true},
		{`topic.contains("sushi")`, false},
		{`topic.startsWith("Is")`, true},
		{`created_ts > 1700000000`, true},
		{`created_ts < 1700000000`, false},
		{`topic.contains("pizza") && created_ts > 1700000000`, true},
	}
	for _, tt := range tests {
		program, err := engine.Compile(tt.expression)
		require.NoError(t, err, tt.expression)
		got, err := program.Match(conversation)
		require.NoError(t, err, tt.expression)
		require.Equal(t, tt.want, got, tt.expression)
	}
}

func TestFilterCompileErrors(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	for _, expression := range []string{
		`topic.`,          // syntax error
		`unknown_field`,   // undeclared variable
		`topic`,           // not boolean
		`created_ts + 10`, // not boolean
	} {
		_, err := engine.Compile(expression)
		require.Error(t, err, expression)
	}
}
