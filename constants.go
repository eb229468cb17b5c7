package blur

// DefaultSigma is the blur width used by NewDefault, in pixels.
const DefaultSigma = 1.5

// Channels is the number of planes in one image (R, G, B).
const Channels = 3

// Dimension limits
const (
	maxArea = 1 << 30 // Largest width*height accepted
)

// Memory accounting
const (
	bytesPerFloat32 = 4
	bytesPerFloat64 = 8
)

const algorithmName = "recursive-gaussian (truncated cosine, k=1,3,5)"
