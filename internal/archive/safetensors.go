package archive

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// SafeTensors format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [array data: raw little-endian bytes]

const metadataKey = "__metadata__"

// Supported safetensors dtypes. Arrays are always written as F64; F32 files
// produced by other tools are widened on read.
const (
	dtypeF64 = "F64"
	dtypeF32 = "F32"
)

// safetensorsEntry describes one array in the JSON header.
type safetensorsEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section
}

type safetensorsFormat struct{}

func (safetensorsFormat) Name() string { return ".safetensors" }

// Write writes arrays in alphabetical order by name.
func (safetensorsFormat) Write(path string, a Archive) (err error) {
	names := a.Names()

	header := make(map[string]any, len(names)+1)
	header[metadataKey] = map[string]string{"format": "tinynet"}

	var offset int64
	for _, name := range names {
		arr := a[name]
		size := int64(len(arr.Data) * 8)
		header[name] = safetensorsEntry{
			DType:       dtypeF64,
			Shape:       arr.Shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "marshal safetensors header")
	}

	//nolint:gosec // G304: model paths come from configuration
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create safetensors")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close safetensors")
		}
	}()

	if err := binary.Write(f, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "write header size")
	}
	if _, err := f.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, name := range names {
		data := a[name].Data
		buf := make([]byte, 8*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
		}
		if _, err := f.Write(buf); err != nil {
			return errors.Wrapf(err, "write array %s", name)
		}
	}
	return nil
}

func (safetensorsFormat) Read(path string) (Archive, error) {
	//nolint:gosec // G304: model paths come from configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open safetensors")
	}
	defer func() {
		_ = f.Close() // read-only, nothing to flush
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat safetensors")
	}

	var headerSize uint64
	if err := binary.Read(f, binary.LittleEndian, &headerSize); err != nil {
		return nil, errors.Wrap(err, "read header size")
	}
	if headerSize > MaxHeaderSize || int64(headerSize) > info.Size()-8 {
		return nil, &ValidationError{
			Err:     ErrHeaderTooLarge,
			Details: "declared header size exceeds file or limit",
		}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, errors.Wrap(err, "parse header JSON")
	}

	entries := make(map[string]safetensorsEntry, len(raw))
	spans := make([]span, 0, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			continue
		}
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		var e safetensorsEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, errors.Wrapf(err, "parse header entry %q", name)
		}
		entries[name] = e
		spans = append(spans, span{Name: name, Offset: e.DataOffsets[0], Size: e.DataOffsets[1] - e.DataOffsets[0]})
	}

	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize above
	if err := validateOffsets(spans, info.Size()-dataOffset); err != nil {
		return nil, err
	}

	out := make(Archive, len(entries))
	for name, e := range entries {
		width, ok := dtypeWidth(e.DType)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedDType, "array %q has dtype %s", name, e.DType)
		}

		size := e.DataOffsets[1] - e.DataOffsets[0]
		if size%width != 0 {
			return nil, &ValidationError{Err: ErrSizeMismatch, Array: name, Details: "byte length is not a multiple of the element size"}
		}

		buf := make([]byte, size)
		if _, err := f.ReadAt(buf, dataOffset+e.DataOffsets[0]); err != nil {
			return nil, errors.Wrapf(err, "read array %q", name)
		}

		out[name] = Array{Shape: e.Shape, Data: decode(buf, e.DType)}
	}
	return out, nil
}

func dtypeWidth(dtype string) (int64, bool) {
	switch dtype {
	case dtypeF64:
		return 8, true
	case dtypeF32:
		return 4, true
	default:
		return 0, false
	}
}

func decode(buf []byte, dtype string) []float64 {
	if dtype == dtypeF32 {
		out := make([]float64, len(buf)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:])))
		}
		return out
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out
}
