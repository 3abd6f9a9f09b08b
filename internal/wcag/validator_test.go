package wcag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docaccess/pdfguard/internal/structtree"
)

func treeOf(roots ...*structtree.Element) *structtree.Tree {
	return &structtree.Tree{Roots: roots}
}

func TestValidateListFlagsMissingLblOrLBody(t *testing.T) {
	list := &structtree.Element{
		ResolvedType: "L",
		Children: []*structtree.Element{
			{ResolvedType: "LI", Children: []*structtree.Element{
				{ResolvedType: "Lbl"},
				{ResolvedType: "LBody"},
			}},
			{ResolvedType: "LI", Children: []*structtree.Element{
				{ResolvedType: "Lbl"},
			}},
		},
	}
	issues := validateList(list)
	require.Len(t, issues, 1, "only the second LI is missing its LBody")
	assert.Equal(t, "1.3.1", issues[0].Criterion)
}

func TestValidateListFlagsEmptyList(t *testing.T) {
	list := &structtree.Element{ResolvedType: "L"}
	issues := validateList(list)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "no LI children")
}

func TestValidateTableNoHeadersReportsSingleIssue(t *testing.T) {
	table := &structtree.Element{
		ResolvedType: "Table",
		Children: []*structtree.Element{
			{ResolvedType: "TR", Children: []*structtree.Element{
				{ResolvedType: "TD"}, {ResolvedType: "TD"},
			}},
		},
	}
	issues := validateTable(table)
	require.Len(t, issues, 1)
	assert.Equal(t, "ISO 14289-1:7.5", issues[0].Clause)
}

func TestValidateTableColumnHeaderCoversCells(t *testing.T) {
	table := &structtree.Element{
		ResolvedType: "Table",
		Children: []*structtree.Element{
			{ResolvedType: "TR", Children: []*structtree.Element{
				{ResolvedType: "TH", ID: "h1"},
			}},
			{ResolvedType: "TR", Children: []*structtree.Element{
				{ResolvedType: "TD"},
			}},
		},
	}
	issues := validateTable(table)
	assert.Empty(t, issues, "a column header in scope should cover the cell below it")
}

func TestCheckHeadingsAndLabelsFlagsSkippedLevel(t *testing.T) {
	ctx := &context{tree: treeOf(&structtree.Element{
		ResolvedType: "Sect",
		Children: []*structtree.Element{
			{ResolvedType: "H1"},
			{ResolvedType: "H3"},
		},
	})}
	issues := checkHeadingsAndLabels(ctx)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "H1 to H3")
}

func TestCheckHeadingsAndLabelsAllowsSequentialLevels(t *testing.T) {
	ctx := &context{tree: treeOf(&structtree.Element{
		ResolvedType: "Sect",
		Children: []*structtree.Element{
			{ResolvedType: "H1"},
			{ResolvedType: "H2"},
		},
	})}
	assert.Empty(t, checkHeadingsAndLabels(ctx))
}

func TestCheckLinkPurposeFlagsGenericText(t *testing.T) {
	ctx := &context{tree: treeOf(&structtree.Element{ResolvedType: "Link", Alt: "click here"})}
	issues := checkLinkPurpose(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "2.4.4", issues[0].Criterion)
}

func TestCheckLinkPurposeAllowsDescriptiveText(t *testing.T) {
	ctx := &context{tree: treeOf(&structtree.Element{ResolvedType: "Link", Alt: "download the annual report"})}
	assert.Empty(t, checkLinkPurpose(ctx))
}

func TestScriptHintDetectsNonLatinScripts(t *testing.T) {
	assert.Equal(t, "Cyrillic", scriptHint("Привет"))
	assert.Equal(t, "CJK", scriptHint("你好"))
	assert.Equal(t, "", scriptHint("hello"))
}

func TestCheckLanguageOfPartsRespectsExplicitOverride(t *testing.T) {
	ctx := &context{
		catalog: nil,
		tree: treeOf(&structtree.Element{
			ResolvedType: "P",
			ActualText:   "你好世界",
			Lang:         "zh-CN",
		}),
	}
	assert.Empty(t, checkLanguageOfParts(ctx), "an element with its own Lang override should not be flagged")
}

func TestCheckLanguageOfPartsFlagsUnmarkedScriptShift(t *testing.T) {
	ctx := &context{
		catalog: nil,
		tree: treeOf(&structtree.Element{
			ResolvedType: "P",
			ActualText:   "你好世界",
		}),
	}
	issues := checkLanguageOfParts(ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "CJK", issues[0].ScriptHint)
}

func TestContrastRatioBlackOnWhiteIsMax(t *testing.T) {
	ratio := contrastRatio([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	assert.InDelta(t, 21.0, ratio, 0.01)
}

func TestContrastRatioIdenticalColorsIsOne(t *testing.T) {
	ratio := contrastRatio([3]float64{0.5, 0.5, 0.5}, [3]float64{0.5, 0.5, 0.5})
	assert.InDelta(t, 1.0, ratio, 0.001)
}

func TestScanPageContrastFlagsLowContrastFillAgainstStroke(t *testing.T) {
	// Light gray fill (0.9) text drawn with a near-identical stroke set
	// as the "background" stand-in, well under the 4.5:1 AA threshold.
	raw := []byte("0.9 0.9 0.9 rg 0.95 0.95 0.95 RG (hello world) Tj")
	hit, found := scanPageContrast(1, raw)
	require.True(t, found, "low-contrast fill/stroke pair should be flagged")
	assert.Equal(t, "hello world", hit.text)
	assert.Less(t, hit.ratio, contrastMinRatio)
}

func TestScanPageContrastIgnoresHighContrastText(t *testing.T) {
	raw := []byte("0 0 0 rg 1 1 1 RG (hello world) Tj")
	_, found := scanPageContrast(1, raw)
	assert.False(t, found, "black-on-white text is well above the AA threshold")
}

func TestScanPageContrastRequiresBothFillAndStroke(t *testing.T) {
	raw := []byte("0.9 0.9 0.9 rg (hello world) Tj")
	_, found := scanPageContrast(1, raw)
	assert.False(t, found, "no stroke color set yet; nothing to compare the fill against")
}

func TestXobjectHasOwnAltFalseForNonDict(t *testing.T) {
	assert.False(t, xobjectHasOwnAlt(nil))
}
