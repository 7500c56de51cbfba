package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Binary FBX errors.
var (
	ErrNotBinaryFBX = errors.New("not a binary FBX file")
	ErrFBXTruncated = errors.New("FBX data truncated")
)

const fbxMagic = "Kaydara FBX Binary  \x00"

// Versions from 7500 on use 64-bit record headers.
const fbxWideVersion = 7500

// fbxNode is one record of the FBX node tree.
type fbxNode struct {
	Name     string
	Props    []any
	Children []*fbxNode
}

func (n *fbxNode) child(name string) *fbxNode {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *fbxNode) prop(i int) any {
	if n == nil || i >= len(n.Props) {
		return nil
	}
	return n.Props[i]
}

// fbxReader walks a binary FBX document held in memory. Record end offsets
// are absolute, so the whole file is needed.
type fbxReader struct {
	data []byte
	wide bool
}

func (r *fbxReader) headerSize() int {
	if r.wide {
		return 25
	}
	return 13
}

// parseFBXTree returns the file version and a synthetic root whose children
// are the top-level records.
func parseFBXTree(data []byte) (uint32, *fbxNode, error) {
	if !bytes.HasPrefix(data, []byte(fbxMagic)) {
		return 0, nil, ErrNotBinaryFBX
	}
	if len(data) < 27 {
		return 0, nil, ErrFBXTruncated
	}
	version := binary.LittleEndian.Uint32(data[23:27])
	r := &fbxReader{data: data, wide: version >= fbxWideVersion}

	root := &fbxNode{}
	off := 27
	for off < len(data) {
		n, next, err := r.readNode(off)
		if err != nil {
			return version, nil, err
		}
		if n == nil {
			break
		}
		root.Children = append(root.Children, n)
		off = next
	}
	return version, root, nil
}

func (r *fbxReader) uint(off int) uint64 {
	if r.wide {
		return binary.LittleEndian.Uint64(r.data[off:])
	}
	return uint64(binary.LittleEndian.Uint32(r.data[off:]))
}

// readNode decodes the record at off. A null record yields a nil node and
// the offset just past it.
func (r *fbxReader) readNode(off int) (*fbxNode, int, error) {
	hdr := r.headerSize()
	if off+hdr > len(r.data) {
		return nil, 0, ErrFBXTruncated
	}
	w := (hdr - 1) / 3
	end := r.uint(off)
	count := r.uint(off + w)
	listLen := r.uint(off + 2*w)
	nameLen := int(r.data[off+3*w])
	if end == 0 {
		return nil, off + hdr, nil
	}

	p := off + hdr
	propEnd := uint64(p+nameLen) + listLen
	if end > uint64(len(r.data)) || propEnd > end || end <= uint64(off) {
		return nil, 0, fmt.Errorf("%w: record at %d", ErrFBXTruncated, off)
	}
	n := &fbxNode{Name: string(r.data[p : p+nameLen])}
	p += nameLen

	for i := uint64(0); i < count; i++ {
		v, next, err := r.readProp(p, int(propEnd))
		if err != nil {
			return nil, 0, fmt.Errorf("%s property %d: %w", n.Name, i, err)
		}
		n.Props = append(n.Props, v)
		p = next
	}
	p = int(propEnd)

	for p < int(end) {
		c, next, err := r.readNode(p)
		if err != nil {
			return nil, 0, err
		}
		p = next
		if c == nil {
			break
		}
		n.Children = append(n.Children, c)
	}
	return n, int(end), nil
}

func (r *fbxReader) readProp(p, limit int) (any, int, error) {
	need := func(size int) error {
		if p+1+size > limit {
			return ErrFBXTruncated
		}
		return nil
	}
	if p >= limit {
		return nil, 0, ErrFBXTruncated
	}
	le := binary.LittleEndian
	body := p + 1

	switch code := r.data[p]; code {
	case 'Y':
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return int16(le.Uint16(r.data[body:])), body + 2, nil
	case 'C':
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return r.data[body] != 0, body + 1, nil
	case 'I':
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return int32(le.Uint32(r.data[body:])), body + 4, nil
	case 'F':
		if err := need(4); err != nil {
			return nil, 0, err
		}
		var f float32
		_, err := binary.Decode(r.data[body:body+4], le, &f)
		return f, body + 4, err
	case 'D':
		if err := need(8); err != nil {
			return nil, 0, err
		}
		var d float64
		_, err := binary.Decode(r.data[body:body+8], le, &d)
		return d, body + 8, err
	case 'L':
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return int64(le.Uint64(r.data[body:])), body + 8, nil
	case 'S', 'R':
		if err := need(4); err != nil {
			return nil, 0, err
		}
		n := int(le.Uint32(r.data[body:]))
		if err := need(4 + n); err != nil {
			return nil, 0, err
		}
		raw := r.data[body+4 : body+4+n]
		if code == 'S' {
			return string(raw), body + 4 + n, nil
		}
		return append([]byte(nil), raw...), body + 4 + n, nil
	case 'f', 'd', 'l', 'i', 'b':
		if err := need(12); err != nil {
			return nil, 0, err
		}
		count := int(le.Uint32(r.data[body:]))
		encoding := le.Uint32(r.data[body+4:])
		size := int(le.Uint32(r.data[body+8:]))
		if err := need(12 + size); err != nil {
			return nil, 0, err
		}
		v, err := decodeFBXArray(code, count, encoding, r.data[body+12:body+12+size])
		return v, body + 12 + size, err
	default:
		return nil, 0, fmt.Errorf("unknown property type %q", code)
	}
}

func decodeFBXArray(code byte, count int, encoding uint32, raw []byte) (any, error) {
	var out any
	switch code {
	case 'f':
		out = make([]float32, count)
	case 'd':
		out = make([]float64, count)
	case 'l':
		out = make([]int64, count)
	case 'i':
		out = make([]int32, count)
	case 'b':
		out = make([]bool, count)
	}

	var src io.Reader = bytes.NewReader(raw)
	switch encoding {
	case 0:
	case 1:
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("array: %w", err)
		}
		defer zr.Close()
		src = zr
	default:
		return nil, fmt.Errorf("array: unknown encoding %d", encoding)
	}
	if err := binary.Read(src, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("array of %d: %w", count, err)
	}
	return out, nil
}
