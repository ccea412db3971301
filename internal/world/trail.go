package world

import "fmt"

// LandmarkKind decides which mode an arrival opens.
type LandmarkKind string

const (
	LandmarkPlain      LandmarkKind = "landmark"
	LandmarkSettlement LandmarkKind = "settlement"
	LandmarkRiver      LandmarkKind = "river"
	LandmarkEnd        LandmarkKind = "end"
)

// Landmark is a point of interest at a fixed mile marker.
type Landmark struct {
	Name        string
	Kind        LandmarkKind
	Mile        int
	HasStore    bool
	Description string
}

// Trail is the ordered list of landmarks and the index of the next one.
type Trail struct {
	landmarks []Landmark
	next      int
	current   *Landmark
}

// NewTrail requires strictly increasing mile markers.
func NewTrail(landmarks []Landmark) (*Trail, error) {
	for i := 1; i < len(landmarks); i++ {
		if landmarks[i].Mile <= landmarks[i-1].Mile {
			return nil, fmt.Errorf("landmark %q at mile %d is not after %q at mile %d",
				landmarks[i].Name, landmarks[i].Mile, landmarks[i-1].Name, landmarks[i-1].Mile)
		}
	}
	return &Trail{landmarks: landmarks}, nil
}

// Reached returns the next landmark if odometer has passed it. At most one
// landmark is returned per call.
func (t *Trail) Reached(odometer int) (Landmark, bool) {
	if t.next >= len(t.landmarks) {
		return Landmark{}, false
	}
	lm := t.landmarks[t.next]
	if odometer < lm.Mile {
		return Landmark{}, false
	}
	t.next++
	t.current = &t.landmarks[t.next-1]
	return lm, true
}

// Current returns the most recently reached landmark, if any.
func (t *Trail) Current() (Landmark, bool) {
	if t.current == nil {
		return Landmark{}, false
	}
	return *t.current, true
}

// Next returns the upcoming landmark.
func (t *Trail) Next() (Landmark, bool) {
	if t.next >= len(t.landmarks) {
		return Landmark{}, false
	}
	return t.landmarks[t.next], true
}

// MilesToNext is the distance from odometer to the upcoming landmark.
func (t *Trail) MilesToNext(odometer int) int {
	lm, ok := t.Next()
	if !ok {
		return 0
	}
	return max(lm.Mile-odometer, 0)
}

// Length is the mile marker of the last landmark.
func (t *Trail) Length() int {
	if len(t.landmarks) == 0 {
		return 0
	}
	return t.landmarks[len(t.landmarks)-1].Mile
}

// Landmarks returns every landmark in order.
func (t *Trail) Landmarks() []Landmark { return t.landmarks }

// Passed returns the landmarks already reached.
func (t *Trail) Passed() []Landmark { return t.landmarks[:t.next] }
