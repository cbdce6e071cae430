package riskreward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utcHour(day, hour int) time.Time {
	return time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
}

func TestSessionStrengthAt_Crypto(t *testing.T) {
	// 2026-01-15 is a Thursday; crypto ignores the weekday anyway.
	tests := []struct {
		hour int
		want SessionStrength
	}{
		{13, SessionStrong}, // US/EU overlap opens
		{15, SessionStrong},
		{16, SessionNeutral}, // half-open upper bound
		{10, SessionNeutral},
		{22, SessionWeak}, // overnight window opens
		{23, SessionWeak},
		{3, SessionWeak}, // wraps past midnight
		{5, SessionWeak},
		{6, SessionNeutral},
	}

	for _, tt := range tests {
		got := SessionStrengthAt(AssetBTC, utcHour(15, tt.hour))
		assert.Equal(t, tt.want, got, "BTC at %02d:00 UTC", tt.hour)

		got = SessionStrengthAt(AssetETH, utcHour(15, tt.hour))
		assert.Equal(t, tt.want, got, "ETH at %02d:00 UTC", tt.hour)
	}
}

func TestSessionStrengthAt_Forex(t *testing.T) {
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetEURUSD, utcHour(15, 7)))
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetEURUSD, utcHour(15, 12)))
	assert.Equal(t, SessionNeutral, SessionStrengthAt(AssetEURUSD, utcHour(15, 17)))
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetEURUSD, utcHour(15, 23)))
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetEURUSD, utcHour(15, 2)))
}

func TestSessionStrengthAt_Gold(t *testing.T) {
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetGOLD, utcHour(15, 12)))
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetGOLD, utcHour(15, 16)))
	assert.Equal(t, SessionNeutral, SessionStrengthAt(AssetGOLD, utcHour(15, 17)))
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetGOLD, utcHour(15, 23)))
}

func TestSessionStrengthAt_EquityHoursAndWeekend(t *testing.T) {
	// Thursday 2026-01-15 during NYSE hours.
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetAAPL, utcHour(15, 14)))
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetAAPL, utcHour(15, 19)))
	// Thursday outside market hours.
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetAAPL, utcHour(15, 22)))
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetAAPL, utcHour(15, 8)))
	// Saturday 2026-01-17: closed regardless of hour.
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetAAPL, utcHour(17, 14)))
	// Sunday 2026-01-18.
	assert.Equal(t, SessionWeak, SessionStrengthAt(AssetAAPL, utcHour(18, 14)))
}

func TestSessionStrengthAt_NonUTCInputNormalized(t *testing.T) {
	// 14:00 UTC expressed as 09:00 in New York must still read STRONG.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	at := time.Date(2026, 1, 15, 9, 0, 0, 0, ny)
	assert.Equal(t, SessionStrong, SessionStrengthAt(AssetBTC, at))
}
