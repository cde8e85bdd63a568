package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// WriteOptions controls how variables are encoded.
type WriteOptions struct {
	// Compress wraps every variable in a zlib-compressed element, as MATLAB
	// does by default for -v7 files.
	Compress bool
	// Description is placed in the header text after the MATLAB prefix.
	Description string
}

var le = binary.LittleEndian

// Write encodes vars as a little-endian Level 5 MAT-file. Every variable is
// stored as a double array; Data must be in column-major order.
func Write(w io.Writer, vars []*Variable, opts WriteOptions) error {
	if _, err := w.Write(header(opts.Description)); err != nil {
		return fmt.Errorf("matfile: write header: %w", err)
	}
	for _, v := range vars {
		el, err := encodeMatrix(v)
		if err != nil {
			return err
		}
		if opts.Compress {
			el, err = deflate(el)
			if err != nil {
				return err
			}
		}
		if _, err := w.Write(el); err != nil {
			return fmt.Errorf("matfile: write %q: %w", v.Name, err)
		}
	}
	return nil
}

// Save writes vars to the file at path.
func Save(path string, vars []*Variable, opts WriteOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, vars, opts)
}

func header(description string) []byte {
	text := "MATLAB 5.0 MAT-file"
	if description != "" {
		text += ", " + description
	}
	if len(text) > headerTextLen {
		text = text[:headerTextLen]
	}
	h := make([]byte, headerLen)
	copy(h, text+strings.Repeat(" ", headerTextLen-len(text)))
	le.PutUint16(h[124:], version5)
	copy(h[126:], "IM")
	return h
}

func encodeMatrix(v *Variable) ([]byte, error) {
	if len(v.Dims) < 2 {
		return nil, fmt.Errorf("matfile: variable %q needs at least 2 dimensions, has %d", v.Name, len(v.Dims))
	}
	if v.Len() != len(v.Data) {
		return nil, fmt.Errorf("matfile: variable %q has %d values for dims %v", v.Name, len(v.Data), v.Dims)
	}

	var body bytes.Buffer

	flags := make([]byte, 8)
	le.PutUint32(flags, uint32(ClassDouble))
	writeElement(&body, miUINT32, flags)

	dims := make([]byte, 4*len(v.Dims))
	for i, d := range v.Dims {
		le.PutUint32(dims[4*i:], uint32(int32(d)))
	}
	writeElement(&body, miINT32, dims)

	writeElement(&body, miINT8, []byte(v.Name))

	data := make([]byte, 8*len(v.Data))
	for i, x := range v.Data {
		le.PutUint64(data[8*i:], math.Float64bits(x))
	}
	writeElement(&body, miDOUBLE, data)

	var el bytes.Buffer
	writeElement(&el, miMATRIX, body.Bytes())
	return el.Bytes(), nil
}

func writeElement(buf *bytes.Buffer, typ uint32, payload []byte) {
	var tag [8]byte
	le.PutUint32(tag[0:], typ)
	le.PutUint32(tag[4:], uint32(len(payload)))
	buf.Write(tag[:])
	buf.Write(payload)
	if pad := align8(len(payload)) - len(payload); pad > 0 {
		buf.Write(make([]byte, pad))
	}
}

func deflate(el []byte) ([]byte, error) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(el); err != nil {
		return nil, fmt.Errorf("matfile: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("matfile: compress: %w", err)
	}

	out := make([]byte, 8, 8+z.Len())
	le.PutUint32(out[0:], miCOMPRESSED)
	le.PutUint32(out[4:], uint32(z.Len()))
	return append(out, z.Bytes()...), nil
}
