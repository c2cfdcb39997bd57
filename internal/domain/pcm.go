package domain

import (
	"encoding/binary"
	"math"
)

// Sample reads one little-endian sample from b as a value in [-1, 1]
func (f SampleFormat) Sample(b []byte) float64 {
	switch f {
	case SampleInt16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / math.MaxInt16
	case SampleInt32:
		return float64(int32(binary.LittleEndian.Uint32(b))) / math.MaxInt32
	case SampleFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

// PutSample writes v, clipped to [-1, 1], as one little-endian sample
func (f SampleFormat) PutSample(b []byte, v float64) {
	v = max(-1, min(1, v))
	switch f {
	case SampleInt16:
		binary.LittleEndian.PutUint16(b, uint16(int16(math.Round(v*math.MaxInt16))))
	case SampleInt32:
		binary.LittleEndian.PutUint32(b, uint32(int32(math.Round(v*math.MaxInt32))))
	case SampleFloat32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	}
}
