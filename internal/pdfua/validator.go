package pdfua

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unidoc/unipdf/v3/core"

	"github.com/docaccess/pdfguard/internal/domain"
	"github.com/docaccess/pdfguard/internal/figurealt"
	"github.com/docaccess/pdfguard/internal/pdfmodel"
	"github.com/docaccess/pdfguard/internal/structtree"
)

var log = logrus.WithField("component", "pdfua")

// Validator implements ports.Validator for the Matterhorn checkpoint
// registry.
type Validator struct{}

func New() *Validator { return &Validator{} }

type state struct {
	doc     *pdfmodel.Document
	catalog *core.PdfObjectDictionary
	tree    *structtree.Tree
	lookup  *figurealt.Lookup
}

func (v *Validator) Validate(doc *pdfmodel.Document) ([]domain.Issue, error) {
	catalog, err := doc.CatalogDict()
	if err != nil {
		return nil, err
	}
	pageRefs, _ := doc.PageRefs()
	pageNumbers := structtree.BuildPageNumbers(pageRefs)
	structRootDict, _ := core.GetDict(catalog.Get("StructTreeRoot"))
	tree := structtree.Walk(structRootDict, pageNumbers)
	lookup := figurealt.Build(tree)

	st := &state{doc: doc, catalog: catalog, tree: tree, lookup: lookup}

	checks := []func(*state) []domain.Issue{
		checkXMPAndIdentifier, // 01-001, 01-002
		checkMarkInfo,         // 01-004
		checkDocumentLang,     // 01-005, 14-001
		checkViewerPreferences, // 01-006
		checkStructTreeRoot,   // 02-001
		checkPageCoverage,     // 02-002
		checkRoleMapRemap,     // 02-004, 31-001
		checkFigureAlt,        // 06-001
		checkLists,            // 07-001
		checkTables,           // 07-002, 07-003
		checkFonts,            // 09-001
		checkLanguageOfParts,  // 11-001
		checkAnnotations,      // 13-001, 13-004
		checkTitle,            // 14-002
		checkHeadingSequence,  // 14-003
		checkOptionalContent,  // 28-001
	}

	var issues []domain.Issue
	for _, check := range checks {
		issues = append(issues, runChecked(st, check)...)
	}
	return issues, nil
}

func runChecked(st *state, check func(*state) []domain.Issue) (issues []domain.Issue) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Debug("pdfua checkpoint recovered")
			issues = nil
		}
	}()
	return check(st)
}

func issueFor(cp string, page int, context, description string) domain.Issue {
	c := ByID[cp]
	desc := description
	if desc == "" {
		desc = c.Description
	}
	return domain.Issue{
		IssueID:      domain.NewIssueID(domain.CategoryPDFUA, c.Clause, page, context),
		Category:     domain.CategoryPDFUA,
		Clause:       "ISO 14289-1:" + c.Clause,
		MatterhornID: cp,
		Severity:     domain.SeverityHigh,
		Page:         page,
		Description:  desc,
	}
}

// --- 01-001 / 01-002: XMP metadata + PDF/UA identifier ---

func checkXMPAndIdentifier(st *state) []domain.Issue {
	meta, ok := st.doc.Metadata()
	if !ok || strings.TrimSpace(meta) == "" {
		return []domain.Issue{issueFor("01-001", 0, "missing-xmp", "")}
	}
	if !strings.Contains(meta, "pdfuaid:part") {
		return []domain.Issue{issueFor("01-002", 0, "missing-pdfuaid", "")}
	}
	return nil
}

// --- 01-004: MarkInfo ---

func checkMarkInfo(st *state) []domain.Issue {
	markInfo, ok := core.GetDict(st.catalog.Get("MarkInfo"))
	if !ok {
		return []domain.Issue{issueFor("01-004", 0, "missing-markinfo", "")}
	}
	marked, ok := core.GetBoolVal(markInfo.Get("Marked"))
	if !ok || !marked {
		return []domain.Issue{issueFor("01-004", 0, "marked-false", "")}
	}
	return nil
}

// --- 01-005 / 14-001: document Lang ---

func checkDocumentLang(st *state) []domain.Issue {
	if _, ok := core.GetStringBytes(st.catalog.Get("Lang")); ok {
		return nil
	}
	return []domain.Issue{
		issueFor("01-005", 0, "missing-lang", ""),
		issueFor("14-001", 0, "missing-lang", ""),
	}
}

// --- 01-006: ViewerPreferences DisplayDocTitle ---

func checkViewerPreferences(st *state) []domain.Issue {
	vp, ok := core.GetDict(st.catalog.Get("ViewerPreferences"))
	if !ok {
		return []domain.Issue{issueFor("01-006", 0, "missing-viewerprefs", "")}
	}
	display, ok := core.GetBoolVal(vp.Get("DisplayDocTitle"))
	if !ok || !display {
		return []domain.Issue{issueFor("01-006", 0, "displaydoctitle-false", "")}
	}
	return nil
}

// --- 02-001: StructTreeRoot presence ---

func checkStructTreeRoot(st *state) []domain.Issue {
	if _, ok := core.GetDict(st.catalog.Get("StructTreeRoot")); ok {
		return nil
	}
	return []domain.Issue{issueFor("02-001", 0, "missing-structtreeroot", "")}
}

// --- 02-002: page coverage (every page reachable from the tree) ---

func checkPageCoverage(st *state) []domain.Issue {
	n, _ := st.doc.NumPages()
	if n == 0 || len(st.tree.Roots) == 0 {
		return nil
	}
	covered := map[int]struct{}{}
	st.tree.Each(func(el *structtree.Element) {
		if el.EffectivePage > 0 {
			covered[el.EffectivePage] = struct{}{}
		}
	})
	var issues []domain.Issue
	for page := 1; page <= n; page++ {
		if _, ok := covered[page]; !ok {
			issues = append(issues, issueFor("02-002", page, "uncovered-page", ""))
		}
	}
	return issues
}

// --- 02-004 / 31-001: RoleMap correctness ---
//
// A custom type whose RoleMap chain cycles resolves to a non-standard
// name and is reported as 31-001; 31-002 is not emitted.

func checkRoleMapRemap(st *state) []domain.Issue {
	var issues []domain.Issue
	var offending []domain.OffendingMapping
	for from, to := range st.tree.RoleMap {
		if structtree.IsStandardType(from) {
			// 02-004: a standard type must never be remapped away.
			offending = append(offending, domain.OffendingMapping{From: "/" + from, To: "/" + to})
			continue
		}
		resolved := structtree.ResolveType(from, st.tree.RoleMap)
		if !structtree.IsStandardType(resolved) {
			issues = append(issues, issueFor("31-001", 0, from, ""))
		}
	}
	if len(offending) > 0 {
		iss := issueFor("02-004", 0, "standard-type-remapped", "")
		iss.OffendingMappings = offending
		issues = append(issues, iss)
	}
	return issues
}

// --- 06-001: Figure alt text ---

func checkFigureAlt(st *state) []domain.Issue {
	var issues []domain.Issue
	st.tree.Each(func(el *structtree.Element) {
		if el.ResolvedType != "Figure" {
			return
		}
		if el.Alt == "" && el.ActualText == "" {
			issues = append(issues, issueFor("06-001", el.EffectivePage, el.ID, ""))
		}
	})
	return issues
}

// --- 07-001: Lists ---

func checkLists(st *state) []domain.Issue {
	var issues []domain.Issue
	st.tree.Each(func(el *structtree.Element) {
		if el.ResolvedType != "L" {
			return
		}
		hasLI := false
		for _, c := range el.Children {
			if c.ResolvedType == "LI" {
				hasLI = true
				break
			}
		}
		if !hasLI {
			issues = append(issues, issueFor("07-001", el.EffectivePage, el.ID, ""))
		}
	})
	return issues
}

// --- 07-002 / 07-003: Tables ---

func checkTables(st *state) []domain.Issue {
	var issues []domain.Issue
	st.tree.Each(func(el *structtree.Element) {
		if el.ResolvedType != "Table" {
			return
		}
		hasTH := false
		eachDescendant(el, func(c *structtree.Element) {
			if c.ResolvedType == "TH" {
				hasTH = true
			}
		})
		if !hasTH {
			issues = append(issues, issueFor("07-002", el.EffectivePage, el.ID, ""))
			return
		}
		eachDescendant(el, func(c *structtree.Element) {
			if c.ResolvedType != "TD" {
				return
			}
			if attrNameList(c.Attributes, "Headers") == nil {
				issues = append(issues, issueFor("07-003", c.EffectivePage, c.ID, ""))
			}
		})
	})
	return issues
}

// eachDescendant recurses el's children (but not el itself), used to scan
// within a single Table element without a second full-tree walk.
func eachDescendant(el *structtree.Element, visit func(*structtree.Element)) {
	for _, c := range el.Children {
		visit(c)
		eachDescendant(c, visit)
	}
}

func attrNameList(attrs *core.PdfObjectDictionary, key string) []string {
	if attrs == nil {
		return nil
	}
	arr, ok := core.GetArray(attrs.Get(key))
	if !ok {
		return nil
	}
	var out []string
	for _, el := range arr.Elements() {
		if s, ok := core.GetStringBytes(el); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// --- 09-001: Fonts (missing ToUnicode; 09-002 is not emitted) ---

func checkFonts(st *state) []domain.Issue {
	var issues []domain.Issue
	n, _ := st.doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := st.doc.Page(page)
		if err != nil || p.Resources == nil {
			continue
		}
		resDict, ok := core.GetDict(p.Resources.ToPdfObject())
		if !ok {
			continue
		}
		fonts, ok := core.GetDict(resDict.Get("Font"))
		if !ok {
			continue
		}
		for _, key := range fonts.Keys() {
			fObj, ok := core.GetDict(fonts.Get(key))
			if !ok {
				continue
			}
			if _, hasToUnicode := core.GetStream(fObj.Get("ToUnicode")); !hasToUnicode {
				issues = append(issues, issueFor("09-001", page, string(key), ""))
			}
		}
	}
	return issues
}

// --- 11-001: Language of parts (structure-level) ---

func checkLanguageOfParts(st *state) []domain.Issue {
	pageLang := catalogLang(st.catalog)
	if pageLang == "" {
		return nil // 01-005/14-001 already cover the missing-document-lang case
	}
	var issues []domain.Issue
	st.tree.Each(func(el *structtree.Element) {
		if el.ActualText == "" || el.Lang != "" {
			return
		}
		if scriptHint(el.ActualText) == "" {
			return
		}
		issues = append(issues, issueFor("11-001", el.EffectivePage, el.ID, ""))
	})
	return issues
}

// scriptHint classifies text by Unicode block into a coarse label,
// mirroring the detection used by the WCAG 3.1.2 check.
func scriptHint(text string) string {
	for _, r := range text {
		switch {
		case r >= 0x0400 && r <= 0x04FF:
			return "Cyrillic"
		case r >= 0x4E00 && r <= 0x9FFF:
			return "CJK"
		case r >= 0x0600 && r <= 0x06FF:
			return "Arabic"
		case r >= 0x0590 && r <= 0x05FF:
			return "Hebrew"
		case r >= 0x0370 && r <= 0x03FF:
			return "Greek"
		case r >= 0x0900 && r <= 0x097F:
			return "Indic"
		}
	}
	return ""
}

func catalogLang(catalog *core.PdfObjectDictionary) string {
	if catalog == nil {
		return ""
	}
	if s, ok := core.GetStringBytes(catalog.Get("Lang")); ok {
		return string(s)
	}
	return ""
}

// --- 13-001 / 13-004: Annotations ---

func checkAnnotations(st *state) []domain.Issue {
	var issues []domain.Issue
	n, _ := st.doc.NumPages()
	for page := 1; page <= n; page++ {
		p, err := st.doc.Page(page)
		if err != nil {
			continue
		}
		for _, annotRef := range p.Annotations {
			dict, ok := core.GetDict(annotRef.ToPdfObject())
			if !ok {
				continue
			}
			subtype, _ := core.GetName(dict.Get("Subtype"))
			if subtype == nil {
				continue
			}
			switch subtype.String() {
			case "Link":
				if _, ok := core.GetStringBytes(dict.Get("Contents")); !ok {
					issues = append(issues, issueFor("13-001", page, "link", ""))
				}
			case "Widget":
				if _, ok := core.GetStringBytes(dict.Get("TU")); !ok {
					issues = append(issues, issueFor("13-004", page, "widget", ""))
				}
			}
		}
	}
	return issues
}

// --- 14-002: Title ---

func checkTitle(st *state) []domain.Issue {
	info, ok := core.GetDict(st.catalog.Get("Info"))
	if ok {
		if s, ok := core.GetStringBytes(info.Get("Title")); ok && strings.TrimSpace(string(s)) != "" {
			return nil
		}
	}
	meta, ok := st.doc.Metadata()
	if ok && strings.Contains(meta, "dc:title") {
		return nil
	}
	return []domain.Issue{issueFor("14-002", 0, "missing-title", "")}
}

// --- 14-003: Heading sequence ---

func checkHeadingSequence(st *state) []domain.Issue {
	var issues []domain.Issue
	last := 0
	st.tree.Each(func(el *structtree.Element) {
		level := headingLevel(el)
		if level == 0 {
			return
		}
		if last != 0 && level > last+1 {
			issues = append(issues, issueFor("14-003", el.EffectivePage, el.ID, ""))
		}
		last = level
	})
	return issues
}

func headingLevel(el *structtree.Element) int {
	switch el.ResolvedType {
	case "H1":
		return 1
	case "H2":
		return 2
	case "H3":
		return 3
	case "H4":
		return 4
	case "H5":
		return 5
	case "H6":
		return 6
	}
	return 0
}

// --- 28-001: Optional content (28-003 is not emitted) ---

func checkOptionalContent(st *state) []domain.Issue {
	ocProps, ok := core.GetDict(st.catalog.Get("OCProperties"))
	if !ok {
		return nil // no optional content, nothing to check
	}
	ocgs, ok := core.GetArray(ocProps.Get("OCGs"))
	if !ok {
		return nil
	}
	var issues []domain.Issue
	for i, ref := range ocgs.Elements() {
		dict, ok := core.GetDict(ref)
		if !ok {
			continue
		}
		if _, hasUsage := core.GetDict(dict.Get("Usage")); !hasUsage {
			issues = append(issues, issueFor("28-001", 0, nthOCG(i), ""))
		}
	}
	return issues
}

func nthOCG(i int) string {
	return "ocg-" + strconv.Itoa(i)
}
