// Package matfile reads and writes MATLAB Level 5 MAT-files.
//
// Only numeric arrays are decoded. Every numeric variable is returned with
// its dimensions and its real part converted to float64, in MATLAB's
// column-major element order. Cell, struct, char, sparse and object arrays
// are skipped. Version 7.3 files are HDF5 containers and are rejected with
// ErrHDF5.
package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
)

// Class is the MATLAB array class stored in the array flags.
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

// Numeric reports whether arrays of class c carry plain numeric data.
func (c Class) Numeric() bool {
	return c >= ClassDouble && c <= ClassUint64
}

const (
	headerLen     = 128
	headerTextLen = 116
	version5      = 0x0100
	version73     = 0x0200

	flagComplex = 0x0800
)

var (
	// ErrNotMAT is returned when the input does not start with a MAT-file header.
	ErrNotMAT = errors.New("matfile: not a MAT-file")

	// ErrUnsupportedVersion is returned for header versions other than 5.
	ErrUnsupportedVersion = errors.New("matfile: unsupported MAT-file version")

	// ErrHDF5 is returned for version 7.3 files, which are HDF5 containers.
	ErrHDF5 = errors.New("matfile: version 7.3 (HDF5) MAT-files are not supported")

	// ErrTruncated is returned when a data element runs past the end of its container.
	ErrTruncated = errors.New("matfile: truncated data element")

	errSkip = errors.New("matfile: skip variable")
)

// Variable is a decoded numeric array.
type Variable struct {
	Name    string
	Class   Class
	Dims    []int
	Complex bool
	// Data holds the real part in column-major order.
	Data []float64
}

// Len returns the number of elements implied by Dims.
func (v *Variable) Len() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// File is the decoded content of a MAT-file.
type File struct {
	Header    string
	Version   uint16
	ByteOrder binary.ByteOrder
	// Names lists numeric variables in file order.
	Names []string
	vars  map[string]*Variable
}

// Variable returns the numeric variable with the given name.
func (f *File) Variable(name string) (*Variable, bool) {
	v, ok := f.vars[name]
	return v, ok
}

func (f *File) add(v *Variable) {
	if f.vars == nil {
		f.vars = make(map[string]*Variable)
	}
	if _, dup := f.vars[v.Name]; !dup {
		f.Names = append(f.Names, v.Name)
	}
	f.vars[v.Name] = v
}

// Open reads and decodes the MAT-file at path.
func Open(path string) (f *File, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Read(fh)
}

// Read decodes a MAT-file from r.
func Read(r io.Reader) (*File, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("matfile: read: %w", err)
	}
	return Decode(buf)
}

// Decode decodes an in-memory MAT-file.
func Decode(buf []byte) (*File, error) {
	if len(buf) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrNotMAT, len(buf))
	}
	text := strings.TrimRight(string(buf[:headerTextLen]), " \x00")
	if !strings.HasPrefix(text, "MATLAB") {
		return nil, fmt.Errorf("%w: missing MATLAB header text", ErrNotMAT)
	}

	var order binary.ByteOrder
	switch string(buf[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad endian indicator %q", ErrNotMAT, buf[126:128])
	}

	version := order.Uint16(buf[124:126])
	switch version {
	case version5:
	case version73:
		return nil, ErrHDF5
	default:
		return nil, fmt.Errorf("%w: 0x%04x", ErrUnsupportedVersion, version)
	}

	f := &File{Header: text, Version: version, ByteOrder: order}
	d := decoder{order: order}

	rest := buf[headerLen:]
	for len(rest) >= 8 {
		typ, body, next, err := d.element(rest)
		if err != nil {
			return nil, err
		}
		rest = next

		if typ == miCOMPRESSED {
			raw, err := inflate(body)
			if err != nil {
				return nil, err
			}
			typ, body, _, err = d.element(raw)
			if err != nil {
				return nil, err
			}
		}
		if typ != miMATRIX {
			continue
		}

		v, err := d.matrix(body)
		if errors.Is(err, errSkip) {
			continue
		}
		if err != nil {
			return nil, err
		}
		f.add(v)
	}
	return f, nil
}

type decoder struct {
	order binary.ByteOrder
}

// element splits the first data element off b. It returns the element type,
// its payload, and the remainder of b after padding.
func (d decoder) element(b []byte) (typ uint32, body, next []byte, err error) {
	if len(b) < 8 {
		return 0, nil, nil, ErrTruncated
	}
	first := d.order.Uint32(b[0:4])

	// Small data element: size in the upper half of the first word,
	// payload packed into the following four bytes.
	if n := first >> 16; n != 0 {
		if n > 4 {
			return 0, nil, nil, fmt.Errorf("%w: small element of %d bytes", ErrTruncated, n)
		}
		return first & 0xffff, b[4 : 4+n], b[8:], nil
	}

	n := d.order.Uint32(b[4:8])
	if uint64(n) > uint64(len(b)-8) {
		return 0, nil, nil, fmt.Errorf("%w: element of %d bytes, %d available", ErrTruncated, n, len(b)-8)
	}
	total := 8 + int(n)
	body = b[8:total]
	if first != miCOMPRESSED {
		total = align8(total)
	}
	if total > len(b) {
		total = len(b)
	}
	return first, body, b[total:], nil
}

func (d decoder) matrix(body []byte) (*Variable, error) {
	typ, flags, rest, err := d.element(body)
	if err != nil {
		return nil, fmt.Errorf("array flags: %w", err)
	}
	if typ != miUINT32 || len(flags) < 8 {
		return nil, fmt.Errorf("matfile: malformed array flags (type %d, %d bytes)", typ, len(flags))
	}
	word := d.order.Uint32(flags[0:4])
	class := Class(word & 0xff)
	if !class.Numeric() {
		return nil, errSkip
	}

	typ, rawDims, rest, err := d.element(rest)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}
	if typ != miINT32 {
		return nil, fmt.Errorf("matfile: dimensions stored as type %d", typ)
	}
	dims := make([]int, len(rawDims)/4)
	for i := range dims {
		dims[i] = int(int32(d.order.Uint32(rawDims[4*i:])))
		if dims[i] < 0 {
			return nil, fmt.Errorf("matfile: negative dimension %d", dims[i])
		}
	}

	_, name, rest, err := d.element(rest)
	if err != nil {
		return nil, fmt.Errorf("array name: %w", err)
	}

	v := &Variable{
		Name:    string(name),
		Class:   class,
		Dims:    dims,
		Complex: word&flagComplex != 0,
	}

	typ, re, _, err := d.element(rest)
	if err != nil {
		return nil, fmt.Errorf("variable %q real part: %w", v.Name, err)
	}
	v.Data, err = d.numbers(typ, re)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	if len(v.Data) != v.Len() {
		return nil, fmt.Errorf("matfile: variable %q has %d values for dims %v", v.Name, len(v.Data), dims)
	}
	return v, nil
}

// numbers converts a numeric payload of the given element type to float64.
func (d decoder) numbers(typ uint32, b []byte) ([]float64, error) {
	size := elementSize(typ)
	if size == 0 {
		return nil, fmt.Errorf("matfile: non-numeric data type %d", typ)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrTruncated, len(b), size)
	}
	out := make([]float64, len(b)/size)
	for i := range out {
		p := b[i*size:]
		switch typ {
		case miINT8:
			out[i] = float64(int8(p[0]))
		case miUINT8:
			out[i] = float64(p[0])
		case miINT16:
			out[i] = float64(int16(d.order.Uint16(p)))
		case miUINT16:
			out[i] = float64(d.order.Uint16(p))
		case miINT32:
			out[i] = float64(int32(d.order.Uint32(p)))
		case miUINT32:
			out[i] = float64(d.order.Uint32(p))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(d.order.Uint32(p)))
		case miDOUBLE:
			out[i] = math.Float64frombits(d.order.Uint64(p))
		case miINT64:
			out[i] = float64(int64(d.order.Uint64(p)))
		case miUINT64:
			out[i] = float64(d.order.Uint64(p))
		}
	}
	return out, nil
}

func elementSize(typ uint32) int {
	switch typ {
	case miINT8, miUINT8:
		return 1
	case miINT16, miUINT16:
		return 2
	case miINT32, miUINT32, miSINGLE:
		return 4
	case miDOUBLE, miINT64, miUINT64:
		return 8
	}
	return 0
}

func inflate(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("matfile: compressed element: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("matfile: compressed element: %w", err)
	}
	return raw, nil
}

func align8(n int) int {
	return (n + 7) &^ 7
}
