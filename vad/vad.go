// Package vad decides whether an audio frame carries speech by measuring
// spectral energy inside the voice band.
package vad

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	voiceBandLow  = 300.0
	voiceBandHigh = 3400.0

	// DefaultFloor is the lowest threshold calibration may produce.
	DefaultFloor = 1e-4
	// DefaultRatio scales the measured ambient energy into a speech threshold.
	DefaultRatio = 3.0
)

type Config struct {
	SampleRate  int
	FrameLength int
	Floor       float64
	Ratio       float64
}

// Detector is not safe for concurrent use.
type Detector struct {
	lowBin    int
	highBin   int
	floor     float64
	ratio     float64
	threshold float64
	scratch   []float64
}

func New(cfg Config) *Detector {
	if cfg.Floor <= 0 {
		cfg.Floor = DefaultFloor
	}
	if cfg.Ratio <= 0 {
		cfg.Ratio = DefaultRatio
	}

	binWidth := float64(cfg.SampleRate) / float64(cfg.FrameLength)

	low := int(math.Ceil(voiceBandLow / binWidth))
	high := int(math.Floor(voiceBandHigh / binWidth))
	if high > cfg.FrameLength/2 {
		high = cfg.FrameLength / 2
	}
	if low < 1 {
		low = 1
	}
	if high < low {
		high = low
	}

	return &Detector{
		lowBin:    low,
		highBin:   high,
		floor:     cfg.Floor,
		ratio:     cfg.Ratio,
		threshold: cfg.Floor,
		scratch:   make([]float64, cfg.FrameLength),
	}
}

// Energy returns the mean spectral power of the voice band for one frame.
func (d *Detector) Energy(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}

	if cap(d.scratch) < len(frame) {
		d.scratch = make([]float64, len(frame))
	}
	x := d.scratch[:len(frame)]

	for i, s := range frame {
		x[i] = float64(s) / 32768.0
	}

	spectrum := fft.FFTReal(x)

	high := d.highBin
	if high >= len(spectrum) {
		high = len(spectrum) - 1
	}
	if high < d.lowBin {
		return 0
	}

	var sum float64
	for k := d.lowBin; k <= high; k++ {
		m := cmplx.Abs(spectrum[k])
		sum += m * m
	}

	return sum / float64(high-d.lowBin+1) / float64(len(frame))
}

// Calibrate derives the speech threshold from frames of ambient noise.
func (d *Detector) Calibrate(frames [][]int16) float64 {
	if len(frames) == 0 {
		d.threshold = d.floor
		return d.threshold
	}

	var total float64
	for _, frame := range frames {
		total += d.Energy(frame)
	}

	d.threshold = math.Max(d.floor, total/float64(len(frames))*d.ratio)

	return d.threshold
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}

func (d *Detector) IsSpeech(frame []int16) bool {
	return d.Energy(frame) > d.threshold
}
