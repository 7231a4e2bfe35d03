package engine

// NewDeck builds the ordered 52-card deck: 4 suits × 13 ranks, all face-down.
func NewDeck() [DeckSize]Card {
	var deck [DeckSize]Card
	idx := 0
	for suit := uint8(0); suit < 4; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			deck[idx] = NewCard(suit, rank)
			idx++
		}
	}
	return deck
}

// xorshift64 is the shuffle PRNG. Deterministic per seed, so a fixed seed
// reproduces a deal exactly; callers wanting a fresh game seed from the clock.
type xorshift64 uint64

func newXorshift(seed uint64) xorshift64 {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return xorshift64(seed)
}

func (x *xorshift64) next() uint64 {
	v := uint64(*x)
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	*x = xorshift64(v)
	return v
}

// randN returns a random number in [0, n).
func (x *xorshift64) randN(n uint64) uint64 {
	return x.next() % n
}

// ShuffledDeck returns a fresh deck permuted by an unbiased Fisher-Yates
// shuffle driven by the given seed.
func ShuffledDeck(seed uint64) [DeckSize]Card {
	deck := NewDeck()
	rng := newXorshift(seed)
	for i := DeckSize - 1; i > 0; i-- {
		j := int(rng.randN(uint64(i + 1)))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
