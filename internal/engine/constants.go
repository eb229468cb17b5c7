package engine

// Vector layout constants
const (
	// lanes is the number of columns (vertical pass) or outputs (horizontal
	// pass) evaluated together.
	lanes = 4

	// tileVectors is the number of vectors in a full vertical tile. Sixteen
	// float32 columns fill one 64-byte cache line.
	tileVectors = 4

	// tileLanes is the column width of a full vertical tile.
	tileLanes = tileVectors * lanes
)

// Vertical recursion constants
const (
	// ringSlots is the number of rows kept per resonance. Only the last two
	// are read; four slots turn index wraparound into a mask.
	ringSlots = 4
	ringMask  = ringSlots - 1
)

// Memory accounting
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)
