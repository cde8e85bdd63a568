package matfile

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeVariable() *Variable {
	// 2 x 3 x 4, value encodes its subscripts so layout mistakes are visible.
	v := &Variable{Name: "data", Class: ClassDouble, Dims: []int{2, 3, 4}}
	v.Data = make([]float64, 24)
	for k := 0; k < 4; k++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < 2; i++ {
				v.Data[i+2*j+6*k] = float64(100*i + 10*j + k)
			}
		}
	}
	return v
}

func TestWriteRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		other := &Variable{Name: "wavenumbers", Dims: []int{1, 3}, Data: []float64{400, 1100, 1800}}
		err := Write(&buf, []*Variable{cubeVariable(), other}, WriteOptions{Compress: compress})
		require.NoError(t, err)

		f, err := Read(&buf)
		require.NoError(t, err, "compress=%v", compress)
		assert.Equal(t, []string{"data", "wavenumbers"}, f.Names)
		assert.Equal(t, binary.LittleEndian, f.ByteOrder)

		v, ok := f.Variable("data")
		require.True(t, ok)
		assert.Equal(t, ClassDouble, v.Class)
		assert.Equal(t, []int{2, 3, 4}, v.Dims)
		assert.Equal(t, 123.0, v.Data[1+2*2+3*6])
		assert.Equal(t, 12.0, v.Data[0+1*2+2*6])
		assert.Equal(t, cubeVariable().Data, v.Data)
	}
}

func TestSaveOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.mat")
	require.NoError(t, Save(path, []*Variable{cubeVariable()}, WriteOptions{Compress: true}))

	f, err := Open(path)
	require.NoError(t, err)
	v, ok := f.Variable("data")
	require.True(t, ok)
	assert.Equal(t, 24, v.Len())
}

func TestDecodeHeaderErrors(t *testing.T) {
	_, err := Decode([]byte("short"))
	assert.ErrorIs(t, err, ErrNotMAT)

	h := header("")
	copy(h, "NOT A MAT FILE")
	_, err = Decode(h)
	assert.ErrorIs(t, err, ErrNotMAT)

	h = header("")
	binary.LittleEndian.PutUint16(h[124:], version73)
	_, err = Decode(h)
	assert.ErrorIs(t, err, ErrHDF5)

	h = header("")
	binary.LittleEndian.PutUint16(h[124:], 0x0300)
	_, err = Decode(h)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	h = header("")
	copy(h[126:], "XX")
	_, err = Decode(h)
	assert.ErrorIs(t, err, ErrNotMAT)
}

func TestDecodeTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []*Variable{cubeVariable()}, WriteOptions{}))
	b := buf.Bytes()
	_, err := Decode(b[:len(b)-40])
	assert.ErrorIs(t, err, ErrTruncated)
}

// beElement appends a big-endian data element with padding.
func beElement(buf *bytes.Buffer, typ uint32, payload []byte) {
	var tag [8]byte
	binary.BigEndian.PutUint32(tag[0:], typ)
	binary.BigEndian.PutUint32(tag[4:], uint32(len(payload)))
	buf.Write(tag[:])
	buf.Write(payload)
	buf.Write(make([]byte, align8(len(payload))-len(payload)))
}

// beSmallElement appends a big-endian small-format element (payload <= 4 bytes).
func beSmallElement(buf *bytes.Buffer, typ uint32, payload []byte) {
	var tag [8]byte
	binary.BigEndian.PutUint32(tag[0:], uint32(len(payload))<<16|typ)
	copy(tag[4:], payload)
	buf.Write(tag[:])
}

func beMatrix(class Class, dims []int32, name string, dataType uint32, data []byte) []byte {
	var body bytes.Buffer
	flags := make([]byte, 8)
	binary.BigEndian.PutUint32(flags, uint32(class))
	beElement(&body, miUINT32, flags)

	d := make([]byte, 4*len(dims))
	for i, x := range dims {
		binary.BigEndian.PutUint32(d[4*i:], uint32(x))
	}
	beElement(&body, miINT32, d)
	if len(name) <= 4 {
		beSmallElement(&body, miINT8, []byte(name))
	} else {
		beElement(&body, miINT8, []byte(name))
	}
	beElement(&body, dataType, data)

	var el bytes.Buffer
	beElement(&el, miMATRIX, body.Bytes())
	return el.Bytes()
}

func TestDecodeBigEndianMixedTypes(t *testing.T) {
	h := make([]byte, headerLen)
	copy(h, "MATLAB 5.0 MAT-file, Platform: SOL2"+string(bytes.Repeat([]byte(" "), 81)))
	binary.BigEndian.PutUint16(h[124:], version5)
	copy(h[126:], "MI")

	var file bytes.Buffer
	file.Write(h)

	// A char array that must be skipped.
	file.Write(beMatrix(ClassChar, []int32{1, 2}, "note", miUINT16, []byte{0, 'h', 0, 'i'}))
	// A double array stored compactly as int16, as MATLAB does for integral values.
	file.Write(beMatrix(ClassDouble, []int32{2, 2}, "gain", miINT16, []byte{0xff, 0xfe, 0, 3, 0, 5, 0x01, 0x00}))
	// A single-precision array with a long name.
	single := make([]byte, 4)
	binary.BigEndian.PutUint32(single, 0x40490fdb) // float32(pi)
	file.Write(beMatrix(ClassSingle, []int32{1, 1}, "calibration", miSINGLE, single))

	f, err := Decode(file.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"gain", "calibration"}, f.Names)

	_, ok := f.Variable("note")
	assert.False(t, ok)

	gain, ok := f.Variable("gain")
	require.True(t, ok)
	assert.Equal(t, []float64{-2, 3, 5, 256}, gain.Data)

	cal, ok := f.Variable("calibration")
	require.True(t, ok)
	assert.InDelta(t, 3.14159265, cal.Data[0], 1e-6)
}

func TestWriteRejectsBadShape(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []*Variable{{Name: "x", Dims: []int{2, 2}, Data: []float64{1}}}, WriteOptions{})
	assert.Error(t, err)
	err = Write(&buf, []*Variable{{Name: "x", Dims: []int{4}, Data: []float64{1, 2, 3, 4}}}, WriteOptions{})
	assert.Error(t, err)
}
