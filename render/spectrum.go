package render

import (
	"math"
	"math/cmplx"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/maddyblue/go-dsp/window"
)

// Window is the FFT size used for analysis.
const Window = 4096

// Band is the mean magnitude between two frequencies.
type Band struct {
	Lo, Hi float64
	Level  float64
}

// magnitudes averages the Hann-windowed magnitude spectrum over consecutive
// windows of mono. Bin i is at i*rate/Window Hz.
func magnitudes(mono []float64) []float64 {
	mag := make([]float64, Window/2+1)
	hann := window.Hann(Window)
	buf := make([]float64, Window)
	windows := 0
	for off := 0; off+Window <= len(mono); off += Window {
		for i := range buf {
			buf[i] = mono[off+i] * hann[i]
		}
		out := fft.FFTReal(buf)
		for i := range mag {
			mag[i] += cmplx.Abs(out[i]) / Window
		}
		windows++
	}
	if windows == 0 {
		return nil
	}
	for i := range mag {
		mag[i] /= float64(windows)
	}
	return mag
}

// Spectrum splits 20 Hz..rate/2 into n log-spaced bands.
func Spectrum(mono []float64, rate, n int) []Band {
	mag := magnitudes(mono)
	if mag == nil || n <= 0 {
		return nil
	}
	binHz := float64(rate) / Window
	lo, hi := 20.0, float64(rate)/2
	ratio := math.Pow(hi/lo, 1/float64(n))
	bands := make([]Band, n)
	for b := range bands {
		bands[b].Lo = lo * math.Pow(ratio, float64(b))
		bands[b].Hi = bands[b].Lo * ratio
		first := int(math.Ceil(bands[b].Lo / binHz))
		last := int(math.Floor(bands[b].Hi / binHz))
		if last >= len(mag) {
			last = len(mag) - 1
		}
		if first > last {
			// narrower than a bin: take the nearest one
			first = min(int(math.Round(bands[b].Lo/binHz)), len(mag)-1)
			last = first
		}
		var sum float64
		for i := first; i <= last; i++ {
			sum += mag[i]
		}
		bands[b].Level = sum / float64(last-first+1)
	}
	return bands
}

// Dominant returns the frequency of the strongest bin above DC.
func Dominant(mono []float64, rate int) float64 {
	mag := magnitudes(mono)
	best := 0
	for i := 1; i < len(mag); i++ {
		if best == 0 || mag[i] > mag[best] {
			best = i
		}
	}
	return float64(best) * float64(rate) / Window
}
