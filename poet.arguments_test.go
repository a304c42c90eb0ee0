package poet

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindArguments(t *testing.T) {
	schema := map[string]Argument{
		"animal": {Required: true},
		"color":  {Required: true},
		"mood":   {},
	}

	t.Run("binds inputs", func(t *testing.T) {
		v, err := BindArguments(schema, map[string]string{"animal": "horse", "color": "brown"}, false)
		require.NoError(t, err)

		m, ok := v.AsMap()
		require.True(t, ok)
		assert.Equal(t, []string{"animal", "color"}, m.Keys())

		input, ok := v.Lookup("animal.input")
		require.True(t, ok)
		assert.Equal(t, "horse", input.String())
	})

	t.Run("missing required arguments", func(t *testing.T) {
		_, err := BindArguments(schema, map[string]string{"mood": "calm"}, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgMissingArgument)
		assert.Contains(t, err.Error(), "animal")

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		first, ok := customErr.GetMetadata(MetaKeyArgument)
		require.True(t, ok)
		assert.Equal(t, "animal", first)
		all, ok := customErr.GetMetadata(MetaKeyArguments)
		require.True(t, ok)
		assert.Equal(t, "animal,color", all)
	})

	t.Run("empty value satisfies required", func(t *testing.T) {
		_, err := BindArguments(schema, map[string]string{"animal": "", "color": ""}, false)
		require.NoError(t, err)
	})

	t.Run("undeclared arguments are bound", func(t *testing.T) {
		v, err := BindArguments(schema, map[string]string{"animal": "a", "color": "c", "extra": "x"}, false)
		require.NoError(t, err)
		input, ok := v.Lookup("extra.input")
		require.True(t, ok)
		assert.Equal(t, "x", input.String())
	})

	t.Run("strict rejects undeclared arguments", func(t *testing.T) {
		_, err := BindArguments(schema, map[string]string{"animal": "a", "color": "c", "zeta": "z", "extra": "x"}, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgUnknownArgument)

		var customErr *cuserr.CustomError
		require.True(t, errors.As(err, &customErr))
		all, _ := customErr.GetMetadata(MetaKeyArguments)
		assert.Equal(t, "extra,zeta", all)
	})

	t.Run("no schema and no input", func(t *testing.T) {
		v, err := BindArguments(nil, nil, true)
		require.NoError(t, err)
		m, ok := v.AsMap()
		require.True(t, ok)
		assert.Equal(t, 0, m.Len())
	})
}
