//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// openWAVMic replays a WAV file in a loop as the capture source. Only the
// first channel is used; samples are rescaled to 16 bits.
func openWAVMic(path string) (*timedMic, error) {
	if path == "" {
		return nil, errors.New("mic: no WAV file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mic: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("mic: %s: invalid WAV file", path)
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("mic: %s: %w", path, err)
	}

	samples := firstChannel16(pcm.Data, int(d.NumChans), int(d.BitDepth))
	if len(samples) == 0 {
		return nil, fmt.Errorf("mic: %s: no samples", path)
	}
	l := &wavLoop{samples: samples}
	return newTimedMic(d.SampleRate, l.fill), nil
}

func firstChannel16(data []int, chans, bitDepth int) []int16 {
	if chans <= 0 {
		chans = 1
	}
	out := make([]int16, 0, len(data)/chans)
	for i := 0; i < len(data); i += chans {
		v := data[i]
		switch {
		case bitDepth > 16:
			v >>= bitDepth - 16
		case bitDepth > 0 && bitDepth < 16:
			v <<= 16 - bitDepth
		}
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out = append(out, int16(v))
	}
	return out
}

type wavLoop struct {
	samples []int16
	pos     int
}

func (l *wavLoop) fill(buf []int16) {
	for i := range buf {
		buf[i] = l.samples[l.pos]
		l.pos++
		if l.pos == len(l.samples) {
			l.pos = 0
		}
	}
}
