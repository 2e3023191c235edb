package natsort_test

import (
	"testing"

	"pdfmerge/internal/natsort"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"file2.pdf", "file10.pdf", -1},
		{"file10.pdf", "file2.pdf", 1},
		{"File1.pdf", "file1.pdf", -1}, // equal ignoring case, byte tie-break
		{"a.pdf", "B.pdf", -1},
		{"chapter", "chapter1", -1},
		{"007", "7", -1},
		{"7", "007", 1},
		{"1a", "a1", -1},
		{"same", "same", 0},
		{"", "a", -1},
		{"", "", 0},
		{"part99999999999999999999999999.pdf", "part100000000000000000000000000.pdf", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, natsort.Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, natsort.Compare(tt.b, tt.a))
		})
	}
}

func TestSort(t *testing.T) {
	files := []string{
		"/root/p/page10.pdf",
		"/root/p/Page2.pdf",
		"/root/p/page1.pdf",
		"/root/p/appendix.pdf",
		"/root/p/page1b.pdf",
	}
	natsort.Sort(files)
	assert.Equal(t, []string{
		"/root/p/appendix.pdf",
		"/root/p/page1.pdf",
		"/root/p/page1b.pdf",
		"/root/p/Page2.pdf",
		"/root/p/page10.pdf",
	}, files)
}

func TestTotalOrder(t *testing.T) {
	input := []string{"x10", "X9", "x9", "x09", "x", "10", "9", "a-1", "a-01", "b"}
	for _, a := range input {
		assert.Equal(t, 0, natsort.Compare(a, a))
		for _, b := range input {
			if a != b {
				assert.NotEqual(t, 0, natsort.Compare(a, b), "%q vs %q", a, b)
			}
			for _, c := range input {
				if natsort.Less(a, b) && natsort.Less(b, c) {
					assert.True(t, natsort.Less(a, c), "%q < %q < %q", a, b, c)
				}
			}
		}
	}
}
