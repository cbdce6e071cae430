package domain

import (
	"fmt"
	"time"
)

// Candle is one OHLCV bar of price history.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// ValidateHistory checks a price series for caller defects: empty slices are
// fine (the validator is simply skipped), but non-positive prices, inverted
// high/low, negative volume, or out-of-order timestamps indicate a bug in
// the feeding code and are rejected with a hard error.
func ValidateHistory(history []Candle) error {
	for i, c := range history {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("candle %d: non-positive price (O=%.4f H=%.4f L=%.4f C=%.4f)", i, c.Open, c.High, c.Low, c.Close)
		}
		if c.High < c.Low {
			return fmt.Errorf("candle %d: high %.4f below low %.4f", i, c.High, c.Low)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume %.4f", i, c.Volume)
		}
		if i > 0 && c.Timestamp.Before(history[i-1].Timestamp) {
			return fmt.Errorf("candle %d: timestamp %s before predecessor", i, c.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
