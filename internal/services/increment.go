package services

// IncrementPolicy is the tiered step function that fixes the next acceptable
// bid from the current one. It is the single determinant of candidate prices:
// every caller must derive its candidate from the exact value it read, or the
// compare-and-swap invariant breaks.
type IncrementPolicy struct{}

func NewIncrementPolicy() *IncrementPolicy {
	return &IncrementPolicy{}
}

// NextPrice returns the minimum next acceptable bid for currentBid.
func (p *IncrementPolicy) NextPrice(currentBid int64) int64 {
	switch {
	case currentBid < 100:
		return currentBid + 10
	case currentBid < 200:
		return currentBid + 5
	default:
		return currentBid + 2
	}
}
