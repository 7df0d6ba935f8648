// SPDX-License-Identifier: EPL-2.0

package audread_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audread"
	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/audiotest"
)

func Example() {
	// Ten samples of 16-bit mono PCM, built in memory for the example.
	data := audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 1, Bits: 16},
		[]int32{0, 1000, 2000, 3000, 4000, 5000, 6000, 7000, 8000, 9000})

	r, err := audread.NewReader(bytes.NewReader(data))
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer r.Close()

	d := r.Description()
	fmt.Printf("%s, %d Hz, %d channel, %s\n", d.Format, d.SampleRate, d.Channels, d.SampleFormat)

	samples, err := audread.ReadAll[int16](r)
	if err != nil {
		fmt.Println("read:", err)
		return
	}
	fmt.Println(samples)

	// Output:
	// WAV, 8000 Hz, 1 channel, s16
	// [0 1000 2000 3000 4000 5000 6000 7000 8000 9000]
}

func ExampleIdentify() {
	f, err := audread.Identify(bytes.NewReader(audiotest.OggVorbis()))
	fmt.Println(f, err)

	_, err = audread.Identify(bytes.NewReader([]byte("MThd, a MIDI file")))
	fmt.Println(errors.Is(err, audio.ErrUnrecognizedFormat))

	// Output:
	// Ogg Vorbis <nil>
	// true
}

func ExampleReader_NextFrame() {
	data := audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 2, Bits: 16}, []int32{1, -1, 2, -2, 3, -3})

	r, err := audread.NewReader(bytes.NewReader(data), audread.WithFrameSize(2))
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer r.Close()

	for {
		f, err := r.NextFrame()
		if errors.Is(err, audio.ErrExhausted) {
			break
		}
		if err != nil {
			fmt.Println("read:", err)
			return
		}
		fmt.Println(f.Len, f.Ints)
	}
	fmt.Println("position:", r.Position())

	// Output:
	// 2 [1 -1 2 -2]
	// 1 [3 -3]
	// position: 3
}

func ExampleFrames() {
	data := audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 2, Bits: 16}, []int32{16384, -16384, 8192, -8192})

	r, err := audread.NewReader(bytes.NewReader(data))
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer r.Close()

	for frame, err := range audread.Frames[float32](r) {
		if err != nil {
			fmt.Println("read:", err)
			return
		}
		fmt.Println(frame)
	}

	// Output:
	// [0.5 -0.5]
	// [0.25 -0.25]
}
