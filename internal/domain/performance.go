package domain

import "time"

// Window is a performance statistics time window.
type Window string

const (
	WindowDay   Window = "DAY"
	WindowWeek  Window = "WEEK"
	WindowMonth Window = "MONTH"
	WindowAll   Window = "ALL"
)

// Duration returns the window length, or 0 for WindowAll.
func (w Window) Duration() time.Duration {
	switch w {
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// PerformanceBucket aggregates realized results over a time window.
// Always recomputed from scratch from the full fill history — never
// patched incrementally — so adjacent buckets cannot drift apart.
// The window is [Start, End): a fill at exactly End belongs to the
// next bucket.
type PerformanceBucket struct {
	Window Window
	Start  time.Time // zero for WindowAll
	End    time.Time

	RealizedPnL   float64
	UnrealizedPnL float64 // populated for WindowAll only (open positions)
	Volume        float64 // USDC traded inside the window
	TradeCount    int     // closing fills inside the window
	Wins          int
	Losses        int

	// Partial marks stats computed from truncated history. The numbers
	// are still returned but may under-report.
	Partial bool
}

// WinRate returns wins / (wins + losses), or 0 with no closed trades.
func (b PerformanceBucket) WinRate() float64 {
	total := b.Wins + b.Losses
	if total == 0 {
		return 0
	}
	return float64(b.Wins) / float64(total)
}

// TotalPnL returns realized plus unrealized P&L.
func (b PerformanceBucket) TotalPnL() float64 {
	return b.RealizedPnL + b.UnrealizedPnL
}

// Contains reports whether ts falls inside [Start, End).
func (b PerformanceBucket) Contains(ts time.Time) bool {
	if !b.Start.IsZero() && ts.Before(b.Start) {
		return false
	}
	return ts.Before(b.End)
}

// WalletRank is the leaderboard entry for a wallet over a window.
type WalletRank struct {
	Window   Window
	PnL      float64
	Volume   float64
	Rank     int
	Username string
}
