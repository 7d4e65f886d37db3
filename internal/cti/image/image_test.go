package image

import (
	"strings"
	"testing"
)

func TestReadTextParsesHeaderAndRows(t *testing.T) {
	img, err := readText("mem", strings.NewReader("2 3\n1 2 3\n4 5 6\n"))
	if err != nil {
		t.Fatalf("readText: %v", err)
	}
	if img.NRow() != 2 || img.NCol() != 3 {
		t.Fatalf("got %dx%d, want 2x3", img.NRow(), img.NCol())
	}
	if img[1][2] != 6 {
		t.Fatalf("img[1][2] = %g, want 6", img[1][2])
	}
}

func TestReadTextRejectsWrongCellCount(t *testing.T) {
	_, err := readText("mem", strings.NewReader("2 3\n1 2 3\n4 5\n"))
	if err == nil {
		t.Fatalf("expected an IOError for a short row")
	}
}

func TestReadTextRejectsNonNumeric(t *testing.T) {
	_, err := readText("mem", strings.NewReader("1 2\nfoo bar\n"))
	if err == nil {
		t.Fatalf("expected an IOError for non-numeric values")
	}
}

func TestReadTextToleratesTrailingWhitespace(t *testing.T) {
	img, err := readText("mem", strings.NewReader("1 2  \n1.5   2.5   \n"))
	if err != nil {
		t.Fatalf("readText: %v", err)
	}
	if img[0][0] != 1.5 || img[0][1] != 2.5 {
		t.Fatalf("unexpected values: %v", img[0])
	}
}

func TestColumnRoundTrip(t *testing.T) {
	img := New(3, 2)
	img.SetColumn(1, []float64{1, 2, 3})
	got := img.Column(1)
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Column(1)[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := New(2, 2)
	img[0][0] = 5
	clone := img.Clone()
	clone[0][0] = 9
	if img[0][0] != 5 {
		t.Fatalf("mutating the clone affected the original")
	}
}
