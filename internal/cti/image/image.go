// Package image implements the dense rectangular pixel array the CTI
// engine operates on, plus the plain-text codec used to load and save it
// (spec.md §3.5, §6.1).
package image

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jschewts/arctic/internal/cti/cerrors"
)

// Image is a dense [row][col] array of electron counts. Row 0 is the
// readout end: parallel-direction transfers move charge toward row 0.
type Image [][]float64

// New allocates an nRow x nCol image of zeros.
func New(nRow, nCol int) Image {
	img := make(Image, nRow)
	for i := range img {
		img[i] = make([]float64, nCol)
	}
	return img
}

// NRow returns the number of rows.
func (img Image) NRow() int { return len(img) }

// NCol returns the number of columns, or 0 for an empty image.
func (img Image) NCol() int {
	if len(img) == 0 {
		return 0
	}
	return len(img[0])
}

// Clone returns a deep copy.
func (img Image) Clone() Image {
	out := make(Image, len(img))
	for i, row := range img {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Column returns a copy of column c across every row.
func (img Image) Column(c int) []float64 {
	col := make([]float64, len(img))
	for r, row := range img {
		col[r] = row[c]
	}
	return col
}

// SetColumn writes values into column c across every row.
func (img Image) SetColumn(c int, values []float64) {
	for r, row := range img {
		row[c] = values[r]
	}
}

// ReadText parses the image text format: a "<n_rows> <n_columns>" header
// line followed by n_rows lines of n_columns whitespace-separated values
// (spec.md §6.1), ported from load_image_from_txt in util.cpp.
func ReadText(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: err}
	}
	defer f.Close()
	return readText(path, f)
}

func readText(path string, r io.Reader) (Image, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("missing header line")}
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("malformed header %q: want \"n_rows n_columns\"", scanner.Text())}
	}
	nRow, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("malformed header: %w", err)}
	}
	nCol, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("malformed header: %w", err)}
	}

	img := New(nRow, nCol)
	for i := 0; i < nRow; i++ {
		if !scanner.Scan() {
			return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("row %d: expected %d values, file ended", i, nCol)}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != nCol {
			return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("row %d: got %d values, want %d", i, len(fields), nCol)}
		}
		for j, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &cerrors.IOError{Path: path, Op: "read", Err: fmt.Errorf("row %d, col %d: %w", i, j, err)}
			}
			img[i][j] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &cerrors.IOError{Path: path, Op: "read", Err: err}
	}
	return img, nil
}

// WriteText writes the image in the same header-then-rows format ReadText
// parses, ported from save_image_to_txt in util.cpp.
func WriteText(path string, img Image) error {
	f, err := os.Create(path)
	if err != nil {
		return &cerrors.IOError{Path: path, Op: "write", Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "%d %d\n", img.NRow(), img.NCol()); err != nil {
		return &cerrors.IOError{Path: path, Op: "write", Err: err}
	}
	for _, row := range img {
		for j, v := range row {
			if j > 0 {
				if err := w.WriteByte(' '); err != nil {
					return &cerrors.IOError{Path: path, Op: "write", Err: err}
				}
			}
			if _, err := w.WriteString(strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
				return &cerrors.IOError{Path: path, Op: "write", Err: err}
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return &cerrors.IOError{Path: path, Op: "write", Err: err}
		}
	}
	return w.Flush()
}
