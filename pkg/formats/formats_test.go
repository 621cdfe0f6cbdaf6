package formats

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/biostruct/pkg/errors"
	"github.com/ajitpratap0/biostruct/pkg/schema"
	"github.com/ajitpratap0/biostruct/pkg/value"
)

func TestInputType(t *testing.T) {
	inputs := map[string]value.Value{
		"int":    value.Int(1),
		"list":   value.List{},
		"record": value.NewRecord(0),
		"nil":    nil,
	}
	for _, f := range schema.Formats() {
		drive, ok := DriverFor(f)
		require.True(t, ok, f)
		for name, in := range inputs {
			t.Run(fmt.Sprintf("%s/%s", f, name), func(t *testing.T) {
				out, err := drive(in, Options{})
				require.Error(t, err)
				assert.Nil(t, out)
				assert.True(t, errors.IsType(err, errors.ErrorTypeInputType))
				assert.Contains(t, err.Error(), "Input must be binary or string data")
			})
		}
	}
}

func sequenceOf(items []int, failAt int) func() (int, error) {
	i := 0
	return func() (int, error) {
		if i == failAt {
			i++
			return 0, fmt.Errorf("bad record %d", i)
		}
		if i >= len(items) {
			return 0, io.EOF
		}
		v := items[i]
		i++
		return v, nil
	}
}

func toInt(n int) (value.Value, error) { return value.Int(n), nil }

func TestCollect(t *testing.T) {
	t.Run("all records", func(t *testing.T) {
		body, err := collect(FailFast, sequenceOf([]int{1, 2, 3}, -1), toInt)
		require.NoError(t, err)
		assert.Equal(t, value.List{value.Int(1), value.Int(2), value.Int(3)}, body)
	})

	t.Run("empty input gives an empty list", func(t *testing.T) {
		body, err := collect(FailFast, sequenceOf(nil, -1), toInt)
		require.NoError(t, err)
		assert.NotNil(t, body)
		assert.Empty(t, body)
	})

	t.Run("fail fast drops the body", func(t *testing.T) {
		body, err := collect(FailFast, sequenceOf([]int{1, 2, 3}, 2), toInt)
		require.Error(t, err)
		assert.Nil(t, body)
		assert.True(t, errors.IsType(err, errors.ErrorTypeRecordDecode))
		assert.Contains(t, err.Error(), "bad record 3")
	})

	t.Run("stop at fault keeps earlier records", func(t *testing.T) {
		body, err := collect(StopAtFault, sequenceOf([]int{1, 2, 3}, 2), toInt)
		require.Error(t, err)
		assert.Equal(t, value.List{value.Int(1), value.Int(2)}, body)
	})

	t.Run("mapper errors are always fatal", func(t *testing.T) {
		boom := errors.New(errors.ErrorTypeEncoding, "boom")
		body, err := collect(StopAtFault, sequenceOf([]int{1, 2}, -1), func(n int) (value.Value, error) {
			if n == 2 {
				return nil, boom
			}
			return value.Int(n), nil
		})
		assert.Nil(t, body)
		assert.Same(t, boom, err)
	})
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "fail_fast", FailFast.String())
	assert.Equal(t, "stop_at_fault", StopAtFault.String())
}

func TestDriverFor(t *testing.T) {
	for _, f := range schema.Formats() {
		_, ok := DriverFor(f)
		assert.True(t, ok, f)
	}
	_, ok := DriverFor("xyz")
	assert.False(t, ok)
}
