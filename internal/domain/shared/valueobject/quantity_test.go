package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity(t *testing.T) {
	t.Run("valid quantity", func(t *testing.T) {
		q, err := NewQuantity(decimal.NewFromFloat(2.5), "viss")
		require.NoError(t, err)
		assert.Equal(t, "viss", q.Unit())
		assert.True(t, q.Amount().Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("zero allowed", func(t *testing.T) {
		q, err := NewQuantity(decimal.Zero, "kg")
		require.NoError(t, err)
		assert.True(t, q.IsZero())
	})

	t.Run("negative rejected", func(t *testing.T) {
		_, err := NewQuantity(decimal.NewFromFloat(-1), "kg")
		assert.Error(t, err)
	})
}

func TestNewQuantityFromString(t *testing.T) {
	q, err := NewQuantityFromString("12.75", "kg")
	require.NoError(t, err)
	assert.True(t, q.Amount().Equal(decimal.NewFromFloat(12.75)))

	_, err = NewQuantityFromString("a-lot", "kg")
	assert.Error(t, err)
}

func TestMustNewQuantity(t *testing.T) {
	assert.NotPanics(t, func() { MustNewQuantity(decimal.NewFromInt(3), "pcs") })
	assert.Panics(t, func() { MustNewQuantity(decimal.NewFromInt(-3), "pcs") })
}

func TestZeroQuantity(t *testing.T) {
	q := ZeroQuantity("viss")
	assert.True(t, q.IsZero())
	assert.False(t, q.IsPositive())
	assert.Equal(t, "viss", q.Unit())
}

func TestQuantityAdd(t *testing.T) {
	t.Run("same unit", func(t *testing.T) {
		// Two sale order lines for the same product aggregate to one
		// purchase order line.
		q1 := MustNewQuantity(decimal.NewFromFloat(1.5), "viss")
		q2 := MustNewQuantity(decimal.NewFromFloat(2.25), "viss")

		sum, err := q1.Add(q2)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(3.75)))
	})

	t.Run("unit mismatch rejected", func(t *testing.T) {
		q1 := MustNewQuantity(decimal.NewFromInt(1), "viss")
		q2 := MustNewQuantity(decimal.NewFromInt(1), "kg")

		_, err := q1.Add(q2)
		assert.Error(t, err)
		assert.Panics(t, func() { q1.MustAdd(q2) })
	})
}

func TestQuantitySubtract(t *testing.T) {
	q1 := MustNewQuantity(decimal.NewFromInt(5), "pcs")
	q2 := MustNewQuantity(decimal.NewFromInt(2), "pcs")

	diff, err := q1.Subtract(q2)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(3)))

	_, err = q2.Subtract(q1)
	assert.Error(t, err)

	other := MustNewQuantity(decimal.NewFromInt(1), "kg")
	_, err = q1.Subtract(other)
	assert.Error(t, err)
}

func TestQuantityMultiply(t *testing.T) {
	q := MustNewQuantity(decimal.NewFromFloat(0.5), "viss")

	doubled, err := q.Multiply(decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.True(t, doubled.Amount().Equal(decimal.NewFromInt(2)))

	_, err = q.Multiply(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestQuantityComparisons(t *testing.T) {
	small := MustNewQuantity(decimal.NewFromInt(1), "kg")
	large := MustNewQuantity(decimal.NewFromInt(2), "kg")

	greater, err := large.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, greater)

	_, err = large.GreaterThan(MustNewQuantity(decimal.NewFromInt(1), "pcs"))
	assert.Error(t, err)

	assert.True(t, small.Equals(MustNewQuantity(decimal.NewFromInt(1), "kg")))
	assert.False(t, small.Equals(large))
	assert.False(t, small.Equals(MustNewQuantity(decimal.NewFromInt(1), "pcs")))
}

func TestQuantityString(t *testing.T) {
	q := MustNewQuantity(decimal.NewFromFloat(2.5), "viss")
	assert.Equal(t, "2.5 viss", q.String())

	unitless := MustNewQuantity(decimal.NewFromInt(7), "")
	assert.Equal(t, "7", unitless.String())
}

func TestQuantityJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		q := MustNewQuantity(decimal.NewFromFloat(3.25), "kg")
		data, err := json.Marshal(q)
		require.NoError(t, err)

		var decoded Quantity
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, q.Equals(decoded))
	})

	t.Run("negative payload rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`{"value":"-2","unit":"kg"}`), &q))
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(`{"value":"many","unit":"kg"}`), &q))
	})
}

func TestQuantityScan(t *testing.T) {
	t.Run("string column", func(t *testing.T) {
		var q Quantity
		require.NoError(t, q.Scan("4.5000"))
		assert.True(t, q.Amount().Equal(decimal.NewFromFloat(4.5)))
	})

	t.Run("nil column", func(t *testing.T) {
		var q Quantity
		require.NoError(t, q.Scan(nil))
		assert.True(t, q.IsZero())
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		var q Quantity
		assert.Error(t, q.Scan(struct{}{}))
	})
}

func TestQuantityValue(t *testing.T) {
	q := MustNewQuantity(decimal.NewFromFloat(6.25), "viss")
	v, err := q.Value()
	require.NoError(t, err)
	assert.Equal(t, "6.25", v)
}
