package span

import "fortio.org/safecast"

const maxUint32 = ^uint32(0)

func clampUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

func clampInt(n uint32) int {
	v, err := safecast.Conv[int](n)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return v
}

// FromProtocol converts a zero-based protocol line/character pair.
// Negative values clamp to zero.
func FromProtocol(line, character int) Position {
	return Position{
		Row: Row(clampUint32(line)),
		Col: Column(clampUint32(character)),
	}
}

// Protocol returns the zero-based line/character pair for pos.
func (p Position) Protocol() (line, character int) {
	return clampInt(uint32(p.Row)), clampInt(uint32(p.Col))
}
