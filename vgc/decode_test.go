package vgc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePressure(t *testing.T) {
	v, err := decodePressure([]byte("PR1,7.5e-3\r\n"))
	require.NoError(t, err)
	assert.InDelta(t, 7.5e-3, v, 1e-12)

	v, err = decodePressure([]byte("0,+1.2345E+01\r\n"))
	require.NoError(t, err)
	assert.InDelta(t, 12.345, v, 1e-9)
}

func TestDecodePressure_Bogus(t *testing.T) {
	_, err := decodePressure([]byte("PR1,bogus\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodePressure_TooFewFields(t *testing.T) {
	_, err := decodePressure([]byte("7.5e-3\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeScalar(t *testing.T) {
	v, err := decodeScalar([]byte("36.7\r\n"))
	require.NoError(t, err)
	assert.InDelta(t, 36.7, v, 1e-9)

	_, err = decodeScalar([]byte("warm\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeUnit(t *testing.T) {
	for code := 0; code <= 5; code++ {
		u, err := decodeUnit([]byte{byte('0' + code), '\r', '\n'})
		require.NoError(t, err)
		assert.Equal(t, PressureUnit(code), u)
	}
}

func TestDecodeUnit_OutOfRange(t *testing.T) {
	_, err := decodeUnit([]byte("6\r\n"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = decodeUnit([]byte("-1\r\n"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = decodeUnit([]byte("X\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeIdentity(t *testing.T) {
	ident, err := decodeIdentity([]byte("TPG,DUAL2,123456,1.0,2.1\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "TPG", ident.Type)
	assert.Equal(t, "DUAL2", ident.Model)
	assert.Equal(t, int64(123456), ident.Serial)
	assert.Equal(t, "1.0", ident.Firmware)
	assert.Equal(t, "2.1", ident.Hardware)
	assert.Equal(t, 2, ident.GaugeCount)
}

func TestDecodeIdentity_TooFewFields(t *testing.T) {
	_, err := decodeIdentity([]byte("TPG,DUAL2,123456\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeIdentity_BadSerial(t *testing.T) {
	_, err := decodeIdentity([]byte("TPG,DUAL2,serial,1.0,2.1\r\n"))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDeriveGaugeCount(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"DUAL2", 2},
		{"VGC503", 3},
		{"SINGLE1", 1},
		{"TPG", 0},
		{"", 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, deriveGaugeCount(tc.model), "model %q", tc.model)
	}
}

func TestPressureUnit_String(t *testing.T) {
	assert.Equal(t, "mbar", UnitMbar.String())
	assert.Equal(t, "Torr", UnitTorr.String())
	assert.Equal(t, "Pascal", UnitPascal.String())
	assert.Equal(t, "Micron", UnitMicron.String())
	assert.Equal(t, "hPascal", UnitHPascal.String())
	assert.Equal(t, "Volt", UnitVolt.String())

	assert.False(t, PressureUnit(9).Valid())
	assert.Contains(t, PressureUnit(9).String(), "9")
}
