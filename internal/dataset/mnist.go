package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/tinynet-ml/tinynet/internal/parallel"
)

// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
const idxImageMagic = 2051

// maxImagePixels bounds rows*cols so a corrupted header cannot trigger a huge
// allocation.
const maxImagePixels = 1 << 20

// ErrInvalidIDX is returned for files that are not IDX image files.
var ErrInvalidIDX = errors.New("invalid IDX image file")

// LoadImages reads an IDX image file such as train-images-idx3-ubyte.
// Gzip-compressed files (.gz, as distributed) are detected by their magic
// bytes and decompressed transparently.
//
// At most limit images are returned; limit <= 0 reads all of them.
func LoadImages(path string, limit int) ([]mat.Vector, error) {
	//nolint:gosec // G304: dataset path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open images")
	}
	defer func() {
		_ = f.Close() // read-only
	}()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() {
			_ = gz.Close()
		}()
		r = gz
	}

	images, err := ReadImages(r, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return images, nil
}

// ReadImages decodes IDX image data from r. Pixel values are scaled from
// [0, 255] to [0, 1] and every image is flattened row by row.
func ReadImages(r io.Reader, limit int) ([]mat.Vector, error) {
	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if header.Magic != idxImageMagic {
		return nil, errors.Wrapf(ErrInvalidIDX, "magic number: got %d, want %d", header.Magic, idxImageMagic)
	}

	pixels := uint64(header.Rows) * uint64(header.Cols)
	if pixels == 0 || pixels > maxImagePixels {
		return nil, errors.Wrapf(ErrInvalidIDX, "image size %dx%d", header.Rows, header.Cols)
	}

	count := int(header.Count)
	if limit > 0 && limit < count {
		count = limit
	}

	imageSize := int(pixels)
	raw := make([][]byte, 0, min(count, 1<<16))
	for i := 0; i < count; i++ {
		buf := make([]byte, imageSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "read image %d", i)
		}
		raw = append(raw, buf)
	}

	images := make([]mat.Vector, len(raw))
	parallel.For(len(raw), parallel.DefaultConfig(), func(i int) {
		data := make([]float64, imageSize)
		for j, p := range raw[i] {
			data[j] = float64(p) / 255
		}
		images[i] = mat.NewVecDense(imageSize, data)
	})
	return images, nil
}
