package attrwrite

import "math"

// srgbToLinearLUT is the precomputed 256-entry sRGB-to-linear decode table
// spec §4.4.10 calls for ("uses a 256-entry precomputed LUT for the color
// channels"), indexed by a byte-quantized sRGB channel value.
var srgbToLinearLUT = buildSrgbLUT()

func buildSrgbLUT() [256]float64 {
	var lut [256]float64
	for i := range lut {
		c := float64(i) / 255.0
		if c <= 0.04045 {
			lut[i] = c / 12.92
		} else {
			lut[i] = math.Pow((c+0.055)/1.055, 2.4)
		}
	}
	return lut
}

func decodeSrgbChannel(v float64) float64 {
	idx := int(v*255 + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > 255 {
		idx = 255
	}
	return srgbToLinearLUT[idx]
}

// srgbDecodeToColor expands a 1-, 2-, 3-, or 4-component sRGB-encoded
// source into a linear RGBA color: color channels are decoded through the
// LUT, alpha (when present) passes through unchanged (spec §4.4.10:
// "alpha passes through linearly").
func srgbDecodeToColor(src []float64, srcComponents, elementCount int) []float64 {
	out := make([]float64, elementCount*4)
	for i := 0; i < elementCount; i++ {
		s := src[i*srcComponents : (i+1)*srcComponents]
		d := out[i*4 : i*4+4]
		colorChannels := srcComponents
		if srcComponents == 2 || srcComponents == 4 {
			colorChannels-- // the last channel is alpha
		}
		for c := 0; c < 3 && c < colorChannels; c++ {
			d[c] = decodeSrgbChannel(s[c])
		}
		d[3] = 1
		if srcComponents == 4 {
			d[3] = s[3]
		} else if srcComponents == 2 {
			// SRGB_RG: second channel is alpha, passed through linearly.
			d[3] = s[1]
		}
	}
	return out
}
