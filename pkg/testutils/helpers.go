// Package testutils builds directory trees and small PDF documents for tests.
package testutils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// CreateTree creates one subdirectory of root per key, each holding a
// minimal one-page PDF per listed name. It returns root.
func CreateTree(t *testing.T, root string, tree map[string][]string) string {
	t.Helper()
	for sub, names := range tree {
		dir := filepath.Join(root, sub)
		require.NoError(t, os.MkdirAll(dir, 0755))
		for _, name := range names {
			WriteMinimalPDF(t, filepath.Join(dir, name), 1)
		}
	}
	return root
}

// WriteMinimalPDF writes a structurally valid PDF with the given number of
// blank Letter-sized pages.
func WriteMinimalPDF(t *testing.T, path string, pages int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, MinimalPDF(pages), 0644))
}

// MinimalPDF returns the bytes of a blank document with n pages. Object
// offsets in the cross-reference table are computed as the body is written.
func MinimalPDF(n int) []byte {
	if n < 1 {
		n = 1
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	// Objects: 1 catalog, 2 page tree, 3..n+2 pages.
	total := n + 2
	offsets := make([]int, total+1)

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		writeObj(i+3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= total; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}
