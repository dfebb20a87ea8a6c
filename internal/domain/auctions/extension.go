package auctions

import "time"

// InjuryWindow is the soft-close window. A bid landing closer than this to the
// deadline pushes the deadline out by the same amount.
const InjuryWindow = 5 * time.Minute

// ExtendDeadline applies the soft-close rule for a bid accepted at now.
// The extension is added to the current EndAt, not to now, and there is no cap
// on how many times it can be applied.
func (a *Auction) ExtendDeadline(now time.Time) bool {
	if a.EndAt.Sub(now) >= InjuryWindow {
		return false
	}
	a.EndAt = a.EndAt.Add(InjuryWindow)
	return true
}
