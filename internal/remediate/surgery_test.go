package remediate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalPDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>
endobj
xref
0 4
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
trailer
<< /Size 4 /Root 1 0 R /Info 5 0 R >>
startxref
185
%%EOF
`

func TestLoadGraphLocatesCatalogAndInfo(t *testing.T) {
	g, err := loadGraph([]byte(minimalPDF))
	require.NoError(t, err)
	assert.Equal(t, 1, g.catalogObjNum)
	assert.Contains(t, g.catalogBody, "/Pages 2 0 R")
	assert.Equal(t, 5, g.infoObjNum)
	assert.Equal(t, 4, g.nextObjNum)
}

func TestSetCatalogKeySkipsExistingByConvention(t *testing.T) {
	g, err := loadGraph([]byte(minimalPDF))
	require.NoError(t, err)

	assert.False(t, hasKey(g.catalogBody, "Lang"))
	g.setCatalogKey("Lang", "(en-US)")
	assert.True(t, hasKey(g.catalogBody, "Lang"))
}

func TestAllocReservesIncreasingObjectNumbers(t *testing.T) {
	g, err := loadGraph([]byte(minimalPDF))
	require.NoError(t, err)

	n1 := g.alloc("<< /Marked true >>")
	n2 := g.alloc("<< /DisplayDocTitle true >>")
	assert.Equal(t, 4, n1)
	assert.Equal(t, 5, n2)
	require.Len(t, g.appended, 2)
	assert.Equal(t, "<< /Marked true >>", g.appended[0].body)
}

func TestSaveProducesParseableXrefAndTrailer(t *testing.T) {
	g, err := loadGraph([]byte(minimalPDF))
	require.NoError(t, err)

	num := g.alloc("<< /Marked true >>")
	g.setCatalogKey("MarkInfo", ref(num))

	out := string(g.save())
	assert.Contains(t, out, "1 0 obj")
	assert.Contains(t, out, "/MarkInfo 4 0 R")
	assert.Contains(t, out, "4 0 obj\n<< /Marked true >>\nendobj")
	assert.Contains(t, out, "xref\n0 5\n")
	assert.Contains(t, out, "/Info 5 0 R")
	assert.True(t, strings.Contains(out, "startxref"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "%%EOF"))
}

func TestIndirectRefNumParsesReference(t *testing.T) {
	assert.Equal(t, 7, indirectRefNum("/MarkInfo 7 0 R /Lang (en-US)", "MarkInfo"))
	assert.Equal(t, 0, indirectRefNum("/MarkInfo << /Marked true >>", "MarkInfo"))
	assert.Equal(t, 0, indirectRefNum("/Lang (en-US)", "MarkInfo"))
}

func TestUpsertScalarKeyReplacesRatherThanDuplicates(t *testing.T) {
	body := "/Marked false /Suspects true"
	updated := upsertScalarKey(body, "Marked", "true")
	assert.Equal(t, 1, strings.Count(updated, "/Marked"))
	assert.Contains(t, updated, "/Marked true")
	assert.Contains(t, updated, "/Suspects true")
}
