// Package structtree walks a StructTreeRoot (C2), resolving RoleMap
// entries against the closed set of standard structure types and
// collecting MCID/OBJR references for C3 and the table/list checks in
// package wcag.
package structtree

// StandardStructureTypes is the closed set from ISO 32000-1 §14.8.4,
// transliterated from the reference implementation's
// STANDARD_STRUCTURE_TYPES table.
var StandardStructureTypes = map[string]struct{}{
	"Document": {}, "Part": {}, "Art": {}, "Sect": {}, "Div": {},
	"BlockQuote": {}, "Caption": {}, "TOC": {}, "TOCI": {}, "Index": {},
	"NonStruct": {}, "Private": {},
	"H": {}, "H1": {}, "H2": {}, "H3": {}, "H4": {}, "H5": {}, "H6": {},
	"P": {},
	"L": {}, "LI": {}, "Lbl": {}, "LBody": {},
	"Table": {}, "TR": {}, "TH": {}, "TD": {}, "THead": {}, "TBody": {}, "TFoot": {},
	"Span": {}, "Quote": {}, "Note": {}, "Reference": {}, "BibEntry": {},
	"Code": {}, "Link": {}, "Annot": {},
	"Ruby": {}, "RB": {}, "RT": {}, "RP": {},
	"Warichu": {}, "WT": {}, "WP": {},
	"Figure": {}, "Formula": {}, "Form": {},
}

// IsStandardType reports whether name (with or without a leading
// slash) is one of the closed standard structure types.
func IsStandardType(name string) bool {
	_, ok := StandardStructureTypes[StripSlash(name)]
	return ok
}

// BuiltinRoleMap is the ~40 entry built-in catalog of common
// non-standard -> standard mappings used by both the walker's
// resolution and the remediation engine's RoleMap completion (C8
// step 7). Transliterated from COMMON_ROLEMAP_MAPPINGS, keys and
// values normalized without the leading slash the Python source keeps.
var BuiltinRoleMap = map[string]string{
	"Annotation": "Span", "Annotations": "Span", "Comment": "Note",
	"Highlight": "Span", "Underline": "Span", "StrikeOut": "Span",

	"Artifact": "NonStruct", "Artifacts": "NonStruct", "Background": "NonStruct",
	"Decoration": "NonStruct", "Watermark": "NonStruct", "PageNumber": "NonStruct",
	"Header": "NonStruct", "Footer": "NonStruct",

	"Chart": "Figure", "Graph": "Figure", "Diagram": "Figure",
	"Illustration": "Figure", "Image": "Figure", "Photo": "Figure",

	"Heading": "H", "Subheading": "H", "Title": "H1", "Subtitle": "H2",

	"Text": "P", "Paragraph": "P", "Body": "P", "Content": "Div",

	"TableHeader": "TH", "TableData": "TD", "TableCell": "TD", "Row": "TR",

	"ListItem": "LI", "BulletList": "L", "NumberedList": "L",

	"Section": "Sect", "Chapter": "Part", "Article": "Art",

	"FormField": "Form", "TextField": "Form", "CheckBox": "Form",
	"RadioButton": "Form", "PushButton": "Form",

	"Math": "Formula", "Equation": "Formula",
}

// RequiredAttributes lists the PDF/UA-1 attributes a structure element
// of the given standard type must carry.
var RequiredAttributes = map[string][]string{
	"Table": {"Summary"}, "TH": {"Scope"}, "Figure": {"Alt"},
	"Formula": {"Alt"}, "Form": {"TU"}, "Link": {"Contents"}, "Annot": {"Contents"},
}

// StripSlash removes a single leading '/' if present. PDF names in the
// object model already arrive without it (unipdf's core.PdfObjectName
// stores the bare name); callers that read raw RoleMap keys from
// interchange formats (JSON fixtures, golden files) may still carry it.
func StripSlash(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name[1:]
	}
	return name
}
