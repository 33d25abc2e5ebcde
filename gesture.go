package bodyfit

import "fmt"

// Gesture is a body gesture the tracker can be asked to detect.
type Gesture int

const (
	GestureNone Gesture = iota
	RaiseRightHand
	RaiseLeftHand
	Psi
	Tpose
	Stop
	Wave
	Click
	SwipeLeft
	SwipeRight
	SwipeUp
	SwipeDown
	ZoomIn
	ZoomOut
	Wheel
	Jump
	Squat
	Push
	Pull
	numGestures
)

var gestureNames = [numGestures]string{
	"None", "RaiseRightHand", "RaiseLeftHand", "Psi", "Tpose", "Stop",
	"Wave", "Click", "SwipeLeft", "SwipeRight", "SwipeUp", "SwipeDown",
	"ZoomIn", "ZoomOut", "Wheel", "Jump", "Squat", "Push", "Pull",
}

func (g Gesture) String() string {
	if g < 0 || g >= numGestures {
		return fmt.Sprintf("Gesture(%d)", int(g))
	}
	return gestureNames[g]
}

// UnmarshalText parses a gesture by its name.
func (g *Gesture) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range gestureNames {
		if name == s {
			*g = Gesture(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gesture %q", s)
}

func (g Gesture) MarshalText() ([]byte, error) {
	if g < 0 || g >= numGestures {
		return nil, fmt.Errorf("invalid gesture %d", int(g))
	}
	return []byte(gestureNames[g]), nil
}
