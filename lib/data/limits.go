package data

// --------------------------------------------------------------------------
// Limits
// --------------------------------------------------------------------------

const (
	// MaxNameSize is the maximum length of a player name in bytes
	MaxNameSize = 32
	// MaxMessageSize is the maximum length of a chat message in bytes
	MaxMessageSize = 300
	// MaxAudioFrameSize is the maximum size of a single encoded audio frame in bytes
	MaxAudioFrameSize = 4096
)

// NameLimit bounds player names
type NameLimit struct{}

func (NameLimit) Max() int { return MaxNameSize }

// MessageLimit bounds chat messages
type MessageLimit struct{}

func (MessageLimit) Max() int { return MaxMessageSize }

// AudioFrameLimit bounds encoded audio frames
type AudioFrameLimit struct{}

func (AudioFrameLimit) Max() int { return MaxAudioFrameSize }
