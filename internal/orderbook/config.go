package orderbook

// Config parameterizes one symbol's book. Mapstructure tags let the
// env/file config loader populate this directly.
type Config struct {
	Symbol             string  `mapstructure:"symbol"`
	TickSize           float64 `mapstructure:"tick_size"`
	LotSize            float64 `mapstructure:"lot_size"`
	MinOrderQuantity   float64 `mapstructure:"min_order_quantity"`
	TradeRingCapacity  int     `mapstructure:"trade_ring_capacity"`
	EventRingCapacity  int     `mapstructure:"event_ring_capacity"`
}

// lotTolerance is the fraction of one lot step within which a quantity is
// still considered an exact multiple.
const lotTolerance = 1e-9

func isLotMultiple(value, step float64) bool {
	if step <= 0 {
		return true
	}
	ratio := value / step
	rounded := roundHalfAwayFromZero(ratio)
	return absf(ratio-rounded) <= lotTolerance
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func defaultConfig(symbol string) Config {
	return Config{
		Symbol:            symbol,
		TickSize:          1,
		LotSize:           1,
		MinOrderQuantity:  1,
		TradeRingCapacity: 1024,
		EventRingCapacity: 1024,
	}
}
