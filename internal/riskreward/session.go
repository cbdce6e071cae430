package riskreward

import "time"

// SessionStrength classifies how active the trading session is for an asset
// at a given instant.
type SessionStrength string

const (
	SessionStrong  SessionStrength = "STRONG"
	SessionNeutral SessionStrength = "NEUTRAL"
	SessionWeak    SessionStrength = "WEAK"
)

// sessionWindow is a half-open [from, to) UTC hour range; from > to wraps
// past midnight.
type sessionWindow struct {
	from, to int
}

func (w sessionWindow) contains(hour int) bool {
	if w.from <= w.to {
		return hour >= w.from && hour < w.to
	}
	return hour >= w.from || hour < w.to
}

var sessionTables = map[AssetType]struct {
	strong sessionWindow
	weak   sessionWindow
}{
	AssetBTC:    {strong: sessionWindow{13, 16}, weak: sessionWindow{22, 6}},
	AssetETH:    {strong: sessionWindow{13, 16}, weak: sessionWindow{22, 6}},
	AssetEURUSD: {strong: sessionWindow{7, 16}, weak: sessionWindow{21, 6}},
	AssetGOLD:   {strong: sessionWindow{12, 17}, weak: sessionWindow{22, 6}},
}

// SessionStrengthAt classifies the session for the asset at t (UTC). Equity
// hours only count on weekdays; everything else keys purely off the hour.
func SessionStrengthAt(asset AssetType, t time.Time) SessionStrength {
	utc := t.UTC()
	hour := utc.Hour()

	if asset == AssetAAPL {
		wd := utc.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return SessionWeak
		}
		if (sessionWindow{13, 20}).contains(hour) {
			return SessionStrong
		}
		return SessionWeak
	}

	table, ok := sessionTables[asset]
	if !ok {
		return SessionNeutral
	}
	switch {
	case table.strong.contains(hour):
		return SessionStrong
	case table.weak.contains(hour):
		return SessionWeak
	default:
		return SessionNeutral
	}
}
