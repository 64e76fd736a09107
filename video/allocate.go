package video

import "autotube/types"

// AllocateDurations distributes the real narration length across scenes in
// proportion to their declared durations. A declared duration of zero (the
// model omitted it or wrote 0) is weighted as defaultSec so no scene
// disappears. Every returned duration is at least minSec.
//
// The sum of the returned durations equals audioDuration up to the minSec
// clamping and float rounding.
func AllocateDurations(scenes []types.Scene, audioDuration, defaultSec, minSec float64) []types.Scene {
	if defaultSec <= 0 {
		defaultSec = 5.0
	}
	if minSec <= 0 {
		minSec = 0.1
	}

	weights := make([]float64, len(scenes))
	var total float64
	for i, s := range scenes {
		w := s.Duration
		if w <= 0 {
			w = defaultSec
		}
		weights[i] = w
		total += w
	}
	if total < 1 {
		// guards division by zero for degenerate inputs
		total = 1
	}

	out := make([]types.Scene, len(scenes))
	for i, s := range scenes {
		s.ActualDuration = weights[i] / total * audioDuration
		if s.ActualDuration < minSec {
			s.ActualDuration = minSec
		}
		out[i] = s
	}
	return out
}
