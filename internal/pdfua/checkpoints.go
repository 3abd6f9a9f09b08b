// Package pdfua implements C5: the PDF/UA-1 / ISO 14289-1 validator,
// organized around the Matterhorn Protocol checkpoint registry.
// Grounded on backend/matterhorn_protocol.py, transliterated checkpoint
// by checkpoint (same ids, same category grouping), with the checker
// bodies re-expressed against the structure-tree walk instead of a
// Python tree-walk.
package pdfua

// Category is the Matterhorn checkpoint grouping (spec §4.5).
type Category string

const (
	CategoryDocument        Category = "Document"
	CategoryPage            Category = "Page"
	CategoryStructure       Category = "Structure"
	CategoryContent         Category = "Content"
	CategoryGraphics        Category = "Graphics"
	CategoryGraphicsState   Category = "GraphicsState"
	CategoryFont            Category = "Font"
	CategoryAnnotation      Category = "Annotation"
	CategoryOptionalContent Category = "OptionalContent"
)

// Checkpoint is one Matterhorn Protocol entry: an id, the clause it
// maps to, and the category it's grouped under in the summary output.
type Checkpoint struct {
	ID          string
	Clause      string
	Category    Category
	Description string
}

// Registry is the full 25-checkpoint table from matterhorn_protocol.py,
// spanning 01-001 through 31-002 across the nine categories.
var Registry = []Checkpoint{
	{"01-001", "7.1", CategoryDocument, "Document does not contain an XMP metadata stream"},
	{"01-002", "7.1", CategoryDocument, "XMP metadata does not declare a PDF/UA identifier part"},
	{"01-004", "7.1", CategoryDocument, "MarkInfo dictionary is missing or Marked is not true"},
	{"01-005", "7.1", CategoryDocument, "Document-level natural language (Lang) is not specified"},
	{"01-006", "7.1", CategoryDocument, "ViewerPreferences does not specify DisplayDocTitle true"},
	{"02-001", "7.2", CategoryPage, "StructTreeRoot is missing even though the document claims to be tagged"},
	{"02-002", "7.2", CategoryPage, "A page's content is not fully represented in the structure tree"},
	{"02-004", "7.2", CategoryPage, "A standard structure type has been remapped to a non-standard role"},
	{"06-001", "7.2", CategoryGraphics, "Figure tagged element has no alternate description"},
	{"07-001", "7.3", CategoryStructure, "List structure (L) does not contain any LI elements"},
	{"07-002", "7.3", CategoryStructure, "Table structure has no TH header cells"},
	{"07-003", "7.3", CategoryStructure, "Table data cell has no Headers association to a TH cell"},
	{"08-001", "7.4", CategoryGraphicsState, "Graphics state contains content not represented in structure tree"},
	{"09-001", "7.5", CategoryFont, "Font has no usable glyph-to-Unicode mapping"},
	{"09-002", "7.5", CategoryFont, "Font does not have all glyphs used by the document mapped"},
	{"11-001", "7.8", CategoryContent, "Natural language of a structure element could not be determined"},
	{"13-001", "7.18", CategoryAnnotation, "Link annotation has no alternate description distinguishing its purpose"},
	{"13-004", "7.18", CategoryAnnotation, "Widget annotation is missing a TU alternate description"},
	{"14-001", "7.18.1", CategoryDocument, "Document catalog has no Lang entry"},
	{"14-002", "7.18.1", CategoryDocument, "Document-level title (dc:title / Info Title) is missing or empty"},
	{"14-003", "7.18.1", CategoryDocument, "Heading levels in the structure tree are not sequential"},
	{"28-001", "7.8", CategoryOptionalContent, "Optional content group has no usage dictionary describing its purpose"},
	{"28-003", "7.8", CategoryOptionalContent, "Optional content group default state conflicts with document intent"},
	{"31-001", "7.2", CategoryPage, "RoleMap does not resolve a non-standard structure type to a standard one"},
	{"31-002", "7.2", CategoryPage, "RoleMap entry forms a cycle that never reaches a standard type"},
}

// ByID indexes Registry for quick lookup when building Issue.MatterhornID.
var ByID = func() map[string]Checkpoint {
	m := make(map[string]Checkpoint, len(Registry))
	for _, c := range Registry {
		m[c.ID] = c
	}
	return m
}()
