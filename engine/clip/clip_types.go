package clip

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Category tags a clip with the kind of motion it holds. Synchronized blending uses it to decide
// when cached speed ratios are stale.
type Category int

const (
	// CategoryUndefined is a clip whose motion kind is unknown.
	CategoryUndefined Category = iota

	// CategoryIdle is a standing or breathing cycle.
	CategoryIdle

	// CategoryWalk is a walking locomotion cycle.
	CategoryWalk

	// CategoryRun is a running locomotion cycle.
	CategoryRun

	// CategoryJump is a jump take-off or airborne clip.
	CategoryJump

	// CategoryFall is a falling clip.
	CategoryFall
)

var categoryNames = map[Category]string{
	CategoryUndefined: "undefined",
	CategoryIdle:      "idle",
	CategoryWalk:      "walk",
	CategoryRun:       "run",
	CategoryJump:      "jump",
	CategoryFall:      "fall",
}

// String returns the lower-case name of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "undefined"
}

// ParseCategory converts a category name back into a Category.
// Unknown names map to CategoryUndefined.
//
// Parameters:
//   - name: the category name (case-insensitive)
//
// Returns:
//   - Category: the parsed category
//   - bool: false if the name was not recognised
func ParseCategory(name string) (Category, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == name {
			return c, true
		}
	}
	return CategoryUndefined, false
}

// categoryKeywords is checked in order, first match wins.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"idle", CategoryIdle},
	{"walk", CategoryWalk},
	{"run", CategoryRun},
	{"jump", CategoryJump},
	{"fall", CategoryFall},
}

// CategoryFromName guesses a category from an asset name such as "xbot@running".
// Only the part after the last '@' is inspected when present.
//
// Parameters:
//   - name: the asset or file name
//
// Returns:
//   - Category: the first category whose keyword appears in the name, or CategoryUndefined
func CategoryFromName(name string) Category {
	name = strings.ToLower(name)
	if i := strings.LastIndexByte(name, '@'); i >= 0 {
		name = name[i+1:]
	}
	for _, k := range categoryKeywords {
		if strings.Contains(name, k.keyword) {
			return k.category
		}
	}
	return CategoryUndefined
}

// --- Keyframe Types ---

// Channel contains keyframe data for a single joint.
type Channel struct {
	// JointIndex is the index of the joint this channel animates.
	JointIndex int32

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value mgl32.Vec3
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe.
	Value mgl32.Quat
}
