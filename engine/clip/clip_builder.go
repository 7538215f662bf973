package clip

// ClipBuilderOption is a functional option for configuring a Clip via NewClip.
type ClipBuilderOption func(*clip)

// WithName is an option builder that sets the name of the Clip.
// When no category is set explicitly, the name is also used to guess one.
//
// Parameters:
//   - name: the clip identifier
//
// Returns:
//   - ClipBuilderOption: a function that applies the name option to a clip
func WithName(name string) ClipBuilderOption {
	return func(c *clip) {
		c.name = name
	}
}

// WithCategory is an option builder that sets the motion category of the Clip.
//
// Parameters:
//   - category: the clip category
//
// Returns:
//   - ClipBuilderOption: a function that applies the category option to a clip
func WithCategory(category Category) ClipBuilderOption {
	return func(c *clip) {
		c.category = category
	}
}

// WithDuration is an option builder that sets the playable length of the Clip in seconds.
//
// Parameters:
//   - duration: the duration in seconds
//
// Returns:
//   - ClipBuilderOption: a function that applies the duration option to a clip
func WithDuration(duration float32) ClipBuilderOption {
	return func(c *clip) {
		c.duration = duration
	}
}

// WithStartOffset is an option builder that sets where playback begins inside the keyframe data.
//
// Parameters:
//   - offset: the start offset in seconds
//
// Returns:
//   - ClipBuilderOption: a function that applies the start offset option to a clip
func WithStartOffset(offset float32) ClipBuilderOption {
	return func(c *clip) {
		c.startOffset = offset
	}
}

// WithChannels is an option builder that sets the per-joint keyframe channels of the Clip.
// The channels are copied; keyframes are sorted by time during NewClip.
//
// Parameters:
//   - channels: the channels to set
//
// Returns:
//   - ClipBuilderOption: a function that applies the channels option to a clip
func WithChannels(channels []Channel) ClipBuilderOption {
	return func(c *clip) {
		c.channels = make([]Channel, len(channels))
		for i, ch := range channels {
			c.channels[i] = Channel{
				JointIndex:   ch.JointIndex,
				PositionKeys: append([]VectorKeyframe(nil), ch.PositionKeys...),
				RotationKeys: append([]QuaternionKeyframe(nil), ch.RotationKeys...),
				ScaleKeys:    append([]VectorKeyframe(nil), ch.ScaleKeys...),
			}
		}
	}
}
