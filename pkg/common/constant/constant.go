package constant

const (
	MaxMessageSize = 1 << 20
	// ChartCacheSeconds is the max-age sent with rendered charts.
	ChartCacheSeconds = 30
)
