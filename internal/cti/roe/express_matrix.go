package roe

import "github.com/jschewts/arctic/internal/cti/cerrors"

// Matrix is an express matrix: Matrix[e][r] is the number of identical
// physical transfers row r's one simulated transfer stands in for during
// express iteration e (spec.md §4.4).
type Matrix [][]float64

// NRow returns the number of image rows the matrix covers.
func (m Matrix) NRow() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// NExpress returns the number of express iterations.
func (m Matrix) NExpress() int { return len(m) }

// NewExpressMatrix builds the E x nRow express matrix for a readout of
// nRow rows preceded by offset idle transfers (e.g. a prescan region).
//
// Row r undergoes transferCount(r) = r + 1 + offset physical transfers in
// total across the whole simulation (spec.md §4.4: "R ranges from 1 at
// row 0 up to n_row at the far row", extended by offset). The transfer
// indices [0, nRow+offset) are partitioned into E contiguous bands; M[e,r]
// is the length of the overlap between [0, transferCount(r)) and band e's
// range, which is what makes ∑_e M[e,r] = transferCount(r) exactly
// regardless of how the bands are split (the overlap lengths partition
// the full transfer-index range).
//
// express <= 0 or express >= nRow means "exact": E = nRow+offset, one transfer
// index per band, identical to running every physical transfer
// separately. Otherwise E = express, with band widths as equal as
// possible when useInteger is set, or linearly-spaced (possibly
// fractional) boundaries otherwise — the fractional case is an
// approximation, not a compensated scheme (spec.md §9).
func NewExpressMatrix(nRow, express, offset int, useInteger bool) (Matrix, error) {
	if nRow <= 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "roe",
			Field:     "n_row",
			Message:   "must be strictly positive",
		}
	}
	if offset < 0 {
		return nil, &cerrors.ConfigurationError{
			Component: "roe",
			Field:     "offset",
			Message:   "must be non-negative",
		}
	}

	total := nRow + offset
	e := express
	if e <= 0 || e >= nRow {
		e = total
	}

	bounds := bandBounds(total, e, useInteger)

	m := make(Matrix, len(bounds)-1)
	for i := range m {
		m[i] = make([]float64, nRow)
	}
	for r := 0; r < nRow; r++ {
		transferCount := float64(r + 1 + offset)
		for i := 0; i < len(bounds)-1; i++ {
			start, end := bounds[i], bounds[i+1]
			overlap := min64(transferCount, end) - start
			if overlap > 0 {
				m[i][r] = overlap
			}
		}
	}
	return m, nil
}

// bandBounds returns n+1 boundaries partitioning [0, total) into n
// contiguous bands. With useInteger, boundaries land on integers (bands
// as equal as possible); otherwise they're linearly spaced floats.
func bandBounds(total, n int, useInteger bool) []float64 {
	bounds := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		if useInteger {
			bounds[i] = float64((i * total) / n)
		} else {
			bounds[i] = float64(i) * float64(total) / float64(n)
		}
	}
	bounds[n] = float64(total)
	return bounds
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
