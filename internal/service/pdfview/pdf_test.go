package pdfview

import (
	"bytes"
	"fmt"
)

// buildPDF writes a minimal PDF with the given objects numbered from 1 and object 1
// as the catalog, with a correct cross-reference table
func buildPDF(objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// samplePDF has two pages. Page 1 inherits a 600x800 MediaBox from the page tree and
// carries one URI link plus one internal GoTo link; page 2 is US Letter with no links.
func samplePDF() []byte {
	return buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 600 800] >>",
		"<< /Type /Page /Parent 2 0 R /Annots [5 0 R 6 0 R] >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
		"<< /Type /Annot /Subtype /Link /Rect [100 700 200 750] /A << /S /URI /URI (https://example.com/reference) >> >>",
		"<< /Type /Annot /Subtype /Link /Rect [10 10 50 30] /A << /S /GoTo /D [4 0 R /Fit] >> >>",
	)
}
