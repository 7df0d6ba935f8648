// SPDX-License-Identifier: EPL-2.0

// Package pipeline post-processes decoded audio: sample rate conversion,
// down-mixing to mono and collection into 16-bit PCM.
//
// Every stage reads interleaved float32 samples in [-1, 1] from a Source
// and is a Source itself, so stages chain:
//
//	r, _ := audread.Open("interview.flac")
//	defer r.Close()
//
//	mono := pipeline.NewMonoMixer(pipeline.NewResampler(r, 8000))
//	buf := make([]float32, 4096)
//	n, err := mono.ReadSamples(buf)
//
// ReadMono16 runs the common telephony chain in one call.
//
// A Source reports the end of its samples with an error matching io.EOF;
// *audread.Reader does so with audio.ErrExhausted. Stages pass the end and
// any failure through unchanged.
package pipeline
