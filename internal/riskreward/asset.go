package riskreward

import (
	"strings"

	"github.com/sawpanic/tradegate/internal/domain"
)

// AssetType is the coarse asset class a recommendation refers to.
type AssetType string

const (
	AssetBTC    AssetType = "BTC"
	AssetETH    AssetType = "ETH"
	AssetEURUSD AssetType = "EURUSD"
	AssetGOLD   AssetType = "GOLD"
	AssetAAPL   AssetType = "AAPL"
)

// assetKeywords maps summary-text tokens to asset types. Order matters:
// more specific tokens are checked before substrings that could shadow them.
var assetKeywords = []struct {
	token string
	asset AssetType
}{
	{"BITCOIN", AssetBTC},
	{"BTC", AssetBTC},
	{"ETHEREUM", AssetETH},
	{"ETH", AssetETH},
	{"EURUSD", AssetEURUSD},
	{"EUR/USD", AssetEURUSD},
	{"XAUUSD", AssetGOLD},
	{"XAU", AssetGOLD},
	{"GOLD", AssetGOLD},
	{"APPLE", AssetAAPL},
	{"AAPL", AssetAAPL},
}

// ResolveAsset matches the analysis summary against a small fixed keyword
// vocabulary, defaulting to BTC. Deliberately low fidelity: the upstream
// model rarely states the instrument anywhere else, and a wrong-but-plausible
// asset class only shifts the RR requirement by tenths.
func ResolveAsset(summary string) AssetType {
	upper := strings.ToUpper(summary)
	for _, kw := range assetKeywords {
		if strings.Contains(upper, kw.token) {
			return kw.asset
		}
	}
	return AssetBTC
}

// VolatilityProfile returns the intrinsic volatility class of the asset.
// Crypto majors run HIGH; the fiat, metal, and equity entries MEDIUM.
func (a AssetType) VolatilityProfile() domain.VolatilityLevel {
	switch a {
	case AssetBTC, AssetETH:
		return domain.VolatilityHigh
	default:
		return domain.VolatilityMedium
	}
}
