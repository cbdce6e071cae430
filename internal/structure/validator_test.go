package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradegate/internal/domain"
)

func TestValidate_CallerDefects(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	_, err := v.Validate(domain.SignalNeutral, 100, 94, history, "4h")
	assert.ErrorContains(t, err, "signal must be directional")

	_, err = v.Validate(domain.SignalBuy, 0, 94, history, "4h")
	assert.ErrorContains(t, err, "prices must be positive")

	_, err = v.Validate(domain.SignalSell, 100, -1, history, "4h")
	assert.ErrorContains(t, err, "prices must be positive")

	corrupt := waveSeries(10)
	corrupt[4].Volume = -5
	_, err = v.Validate(domain.SignalBuy, 100, 94, corrupt, "4h")
	assert.ErrorContains(t, err, "bad price history")
}

func TestValidate_EmptyHistorySkipsChecks(t *testing.T) {
	v := NewValidator(nil)

	result, err := v.Validate(domain.SignalBuy, 100, 94, nil, "4h")
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Contains(t, result.Reason, "skipped")
	assert.Empty(t, result.Checks)
	assert.Equal(t, domain.VolatilityMedium, result.Regime)
}

func TestValidate_BuyStopBeyondSupportPasses(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	// 94.2 sits below the 94.8 swing-low shelf and clear of the stop
	// clusters hugging it.
	result, err := v.Validate(domain.SignalBuy, 100, 94.2, history, "4h")
	require.NoError(t, err)

	assert.True(t, result.OK, "reason: %s", result.Reason)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, "stop_vs_level", result.Checks[0].Name)
	assert.True(t, result.Checks[0].Passed)
	assert.Equal(t, "stop_vs_pools", result.Checks[1].Name)
	assert.True(t, result.Checks[1].Passed)
	assert.NotEmpty(t, result.Levels)
	assert.NotEmpty(t, result.Pools)
	assert.Equal(t, v.ClassifyRegime(history), result.Regime)
}

func TestValidate_BuyStopAboveSupportFails(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	// A stop a fraction under entry leaves every support below it.
	result, err := v.Validate(domain.SignalBuy, 100, 99.995, history, "4h")
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "support")
	require.Len(t, result.Checks, 1, "pool check is skipped once the level rule fails")
	assert.False(t, result.Checks[0].Passed)
}

func TestValidate_BuyStopInsidePoolFails(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	// 94.7 clears the level rule but rests inside the equal-lows zone.
	result, err := v.Validate(domain.SignalBuy, 100, 94.7, history, "4h")
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "liquidity pool zone")
	require.Len(t, result.Checks, 2)
	assert.True(t, result.Checks[0].Passed)
	assert.False(t, result.Checks[1].Passed)
}

func TestValidate_SellStopBeyondResistancePasses(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	result, err := v.Validate(domain.SignalSell, 100, 106, history, "4h")
	require.NoError(t, err)
	assert.True(t, result.OK, "reason: %s", result.Reason)
}

func TestValidate_SellStopInsidePoolFails(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	// 105.2 is exactly the equal-highs shelf.
	result, err := v.Validate(domain.SignalSell, 100, 105.2, history, "4h")
	require.NoError(t, err)

	assert.False(t, result.OK)
	assert.Contains(t, result.Reason, "liquidity pool zone")
}

func TestValidate_FallbackWithoutProtectingLevel(t *testing.T) {
	v := NewValidator(nil)
	// Three identical bars: no swings, detection leaves nothing below 94.5.
	history := flatSeries(3, 100, 0.25)

	result, err := v.Validate(domain.SignalBuy, 94.5, 94.0, history, "4h")
	require.NoError(t, err)
	assert.True(t, result.OK, "reason: %s", result.Reason)
	assert.Contains(t, result.Checks[0].Description, "no support level found")

	// The fallback still demands clearance below entry.
	result, err = v.Validate(domain.SignalBuy, 94.5, 94.49, history, "4h")
	require.NoError(t, err)
	assert.False(t, result.OK)
}
