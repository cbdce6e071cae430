package riskreward

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/tradegate/internal/domain"
)

func TestResolveAsset(t *testing.T) {
	tests := []struct {
		summary string
		want    AssetType
	}{
		{"Bitcoin breaking out of consolidation", AssetBTC},
		{"BTC/USDT 4h structure favors continuation", AssetBTC},
		{"Ethereum reclaimed the range low", AssetETH},
		{"ETH looks heavy under resistance", AssetETH},
		{"EURUSD rejected the weekly supply zone", AssetEURUSD},
		{"EUR/USD holding above 1.08", AssetEURUSD},
		{"XAUUSD continuation toward 2450", AssetGOLD},
		{"Gold catching a safe-haven bid", AssetGOLD},
		{"Apple earnings gap looks fillable", AssetAAPL},
		{"AAPL reclaiming the 200d", AssetAAPL},
		{"Unrecognized instrument text", AssetBTC},
		{"", AssetBTC},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAsset(tt.summary))
		})
	}
}

func TestResolveAsset_SpecificTokensWin(t *testing.T) {
	// BITCOIN is matched before the BTC substring could misfire, and
	// ETHEREUM before ETH; either way the same asset comes back.
	assert.Equal(t, AssetBTC, ResolveAsset("bitcoin btc"))
	assert.Equal(t, AssetETH, ResolveAsset("ethereum eth"))
}

func TestVolatilityProfile(t *testing.T) {
	assert.Equal(t, domain.VolatilityHigh, AssetBTC.VolatilityProfile())
	assert.Equal(t, domain.VolatilityHigh, AssetETH.VolatilityProfile())
	assert.Equal(t, domain.VolatilityMedium, AssetEURUSD.VolatilityProfile())
	assert.Equal(t, domain.VolatilityMedium, AssetGOLD.VolatilityProfile())
	assert.Equal(t, domain.VolatilityMedium, AssetAAPL.VolatilityProfile())
}
