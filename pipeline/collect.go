// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audread/sample"
)

// collectBuffer is the number of samples Collect16 reads per call, rounded
// down to whole frames but never below one frame.
const collectBuffer = 4096

// ReadMono16 resamples src to rate, mixes it down to mono and returns the
// whole stream as 16-bit PCM. Reaching the end of src is not an error; on
// a failure the samples collected so far are returned with it.
func ReadMono16(src Source, rate int) ([]int16, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %d Hz", ErrInvalidRate, rate)
	}
	var stage Source = NewMonoMixer(src)
	if src.SampleRate() != rate {
		stage = NewMonoMixer(NewResampler(src, rate))
	}
	return Collect16(stage)
}

// Collect16 reads src to the end and converts every sample to int16,
// rounding and saturating.
func Collect16(src Source) ([]int16, error) {
	ch := src.Channels()
	buf := make([]float32, max(collectBuffer/ch, 1)*ch)
	var out []int16
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			out = append(out, sample.FromFloat[int16](float64(v)))
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
