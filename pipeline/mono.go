// SPDX-License-Identifier: EPL-2.0

package pipeline

// minMixBuffer is the smallest scratch buffer a MonoMixer allocates.
const minMixBuffer = 8192

// MonoMixer down-mixes a Source to one channel by averaging the channels
// of every frame. A mono source is passed through.
type MonoMixer struct {
	src Source
	tmp []float32
}

// NewMonoMixer returns a MonoMixer reading from src.
func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }

// ReadSamples fills dst with up to len(dst) mono samples.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	ch := m.src.Channels()
	if ch == 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * ch
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, minMixBuffer))
	}
	n, err := m.src.ReadSamples(m.tmp[:need])
	frames := n / ch
	in := m.tmp[:frames*ch]

	switch ch {
	case 2:
		for f := range frames {
			dst[f] = (in[2*f] + in[2*f+1]) * 0.5
		}
	default:
		inv := 1 / float32(ch)
		for f := range frames {
			var sum float32
			for _, v := range in[f*ch : (f+1)*ch] {
				sum += v
			}
			dst[f] = sum * inv
		}
	}
	return frames, err
}
