// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/formats/wav"
	"github.com/ik5/audread/internal/audiotest"
)

// Example_decoding demonstrates decoding a WAV file.
func Example_decoding() {
	data := audiotest.WAV(audiotest.WAVSpec{SampleRate: 16000, Channels: 1, Bits: 16},
		[]int32{100, 200, 300, 400, 500})

	s, _ := audio.NewStream(bytes.NewReader(data), nil)
	src, err := wav.Decoder{}.Decode(s)
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
		return
	}
	defer src.Close()

	desc := src.Description()
	fmt.Printf("Sample rate: %d Hz\n", desc.SampleRate)
	fmt.Printf("Channels: %d\n", desc.Channels)
	fmt.Printf("Sample format: %s\n", desc.SampleFormat)

	f, err := src.NextFrame()
	if err != nil {
		fmt.Printf("Read error: %v\n", err)
		return
	}
	fmt.Printf("Read %d samples: %v\n", f.Samples(), f.Ints)

	_, err = src.NextFrame()
	fmt.Println("End of stream:", err == io.EOF)
	// Output:
	// Sample rate: 16000 Hz
	// Channels: 1
	// Sample format: s16
	// Read 5 samples: [100 200 300 400 500]
	// End of stream: true
}

// Example_errorNotWAV shows handling of invalid WAV files.
func Example_errorNotWAV() {
	s, _ := audio.NewStream(bytes.NewReader([]byte("This is not a WAV file")), nil)

	_, err := wav.Decoder{}.Decode(s)
	if errors.Is(err, audio.ErrUnrecognizedFormat) {
		fmt.Println("Detected: Not a valid WAV file")
	}
	fmt.Println(err)
	// Output:
	// Detected: Not a valid WAV file
	// audio: wav: open: unrecognized format: not a WAV file
}
