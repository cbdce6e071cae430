package gate

import (
	"math"
	"strconv"
	"strings"

	"github.com/sawpanic/tradegate/internal/domain"
)

// ParsedTrade is a trade setup with its price strings resolved to numbers.
type ParsedTrade struct {
	Entry      float64 `json:"entry"`
	TakeProfit float64 `json:"take_profit"`
	StopLoss   float64 `json:"stop_loss"`
}

// parsePrice resolves one free-text price. Currency symbols and thousands
// separators are tolerated; anything non-numeric or non-positive is not.
func parsePrice(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}

// ParseTrade resolves all three prices of a setup. A nil setup or any
// unparseable price returns false.
func ParseTrade(setup *domain.TradeSetup) (ParsedTrade, bool) {
	if setup == nil {
		return ParsedTrade{}, false
	}
	entry, okE := parsePrice(setup.EntryPrice)
	tp, okT := parsePrice(setup.TakeProfit)
	sl, okS := parsePrice(setup.StopLoss)
	if !okE || !okT || !okS {
		return ParsedTrade{}, false
	}
	return ParsedTrade{Entry: entry, TakeProfit: tp, StopLoss: sl}, true
}

// ValidStructure reports whether the prices sit on the correct side of entry
// for the signal direction: BUY needs tp > entry > sl, SELL needs
// tp < entry < sl. Strict inequalities also rule out tp or sl equal to entry.
func (t ParsedTrade) ValidStructure(signal domain.Signal) bool {
	switch signal {
	case domain.SignalBuy:
		return t.TakeProfit > t.Entry && t.Entry > t.StopLoss
	case domain.SignalSell:
		return t.TakeProfit < t.Entry && t.Entry < t.StopLoss
	default:
		return false
	}
}

// ImpliedRR is the reward-to-risk ratio implied by the prices themselves,
// independent of the model's self-reported ratio string. Returns 0 when the
// structure is invalid for the signal.
func (t ParsedTrade) ImpliedRR(signal domain.Signal) float64 {
	if !t.ValidStructure(signal) {
		return 0
	}
	reward := math.Abs(t.TakeProfit - t.Entry)
	risk := math.Abs(t.Entry - t.StopLoss)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
