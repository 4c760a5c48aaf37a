package validator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ElenaPribylova/GRADER/internal/service/validator"
)

func TestParsePassbackParams(t *testing.T) {
	t.Parallel()

	t.Run("Parses single-quoted dict", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{'oauth_consumer_key': 'ckey', 'lis_result_sourcedid': 'sid'}")
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"oauth_consumer_key":   "ckey",
			"lis_result_sourcedid": "sid",
		}, params)
	})

	t.Run("Parses double-quoted dict", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams(`{"oauth_consumer_key": "ckey"}`)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"oauth_consumer_key": "ckey"}, params)
	})

	t.Run("None means empty dict", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("None")
		require.NoError(t, err)
		require.Empty(t, params)
	})

	t.Run("Empty dict", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{}")
		require.NoError(t, err)
		require.Empty(t, params)
	})

	t.Run("Nested structures", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{'outer': {'inner': [1, 2.5, True, None]}, 'pair': (1, 'two')}")
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"outer": map[string]any{
				"inner": []any{int64(1), 2.5, true, nil},
			},
			"pair": []any{int64(1), "two"},
		}, params)
	})

	t.Run("Numbers", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{'int': 42, 'neg': -7, 'float': 3.14, 'exp': 1e3}")
		require.NoError(t, err)
		require.Equal(t, int64(42), params["int"])
		require.Equal(t, int64(-7), params["neg"])
		require.Equal(t, 3.14, params["float"])
		require.Equal(t, 1000.0, params["exp"])
	})

	t.Run("Escaped quotes inside string", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams(`{'key': 'it\'s'}`)
		require.NoError(t, err)
		require.Equal(t, "it's", params["key"])
	})

	t.Run("Trailing comma is allowed", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{'a': 1,}")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": int64(1)}, params)
	})

	t.Run("Non-string keys are coerced", func(t *testing.T) {
		t.Parallel()

		params, err := validator.ParsePassbackParams("{1: 'one'}")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"1": "one"}, params)
	})

	t.Run("Non-dict literal is an error", func(t *testing.T) {
		t.Parallel()

		_, err := validator.ParsePassbackParams("[1, 2, 3]")
		require.Error(t, err)
		require.Contains(t, err.Error(), "not a dict")
	})

	t.Run("Plain text is an error", func(t *testing.T) {
		t.Parallel()

		_, err := validator.ParsePassbackParams("not a dict")
		require.Error(t, err)
	})

	t.Run("Unterminated dict is an error", func(t *testing.T) {
		t.Parallel()

		_, err := validator.ParsePassbackParams("{'a': 1")
		require.Error(t, err)
	})

	t.Run("Missing value is an error", func(t *testing.T) {
		t.Parallel()

		_, err := validator.ParsePassbackParams("{'a': }")
		require.Error(t, err)
	})

	t.Run("Trailing garbage is an error", func(t *testing.T) {
		t.Parallel()

		_, err := validator.ParsePassbackParams("{'a': 1} extra")
		require.Error(t, err)
	})
}
