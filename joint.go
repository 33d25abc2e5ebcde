package bodyfit

import "fmt"

// Joint is a body joint reported by the tracker.
type Joint int

const (
	SpineBase Joint = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight
	// NumJoints is the number of joints in a tracked skeleton.
	NumJoints int = iota
)

var jointNames = [NumJoints]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

var jointParents = [NumJoints]Joint{
	SpineBase, SpineBase, SpineShoulder, Neck,
	SpineShoulder, ShoulderLeft, ElbowLeft, WristLeft,
	SpineShoulder, ShoulderRight, ElbowRight, WristRight,
	SpineBase, HipLeft, KneeLeft, AnkleLeft,
	SpineBase, HipRight, KneeRight, AnkleRight,
	SpineMid, HandLeft, HandLeft, HandRight, HandRight,
}

// Valid reports whether j is a known joint.
func (j Joint) Valid() bool { return j >= 0 && int(j) < NumJoints }

func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("Joint(%d)", int(j))
	}
	return jointNames[j]
}

// Parent returns the joint j hangs from in the skeleton hierarchy.
// SpineBase is the root and is its own parent.
func (j Joint) Parent() Joint {
	if !j.Valid() {
		return SpineBase
	}
	return jointParents[j]
}

// UnmarshalText parses a joint by its name.
func (j *Joint) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range jointNames {
		if name == s {
			*j = Joint(i)
			return nil
		}
	}
	return fmt.Errorf("unknown joint %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}
