package structtree

import (
	"github.com/unidoc/unipdf/v3/core"
)

// PageKey identifies a page object by its indirect object identity,
// independent of page numbering. Built once per document and used to
// translate a structure element's /Pg entry into a 1-based page number.
type PageKey struct {
	Num int64
	Gen int64
}

func pageKeyOf(obj core.PdfObject) (PageKey, bool) {
	ind, ok := core.GetIndirect(obj)
	if !ok {
		return PageKey{}, false
	}
	indirect, ok := ind.(*core.PdfIndirectObject)
	if !ok {
		return PageKey{}, false
	}
	return PageKey{Num: indirect.ObjectNumber, Gen: indirect.GenerationNumber}, true
}

// Element is one node of the tagged-content tree, after RoleMap
// resolution. Pg/Alt/ActualText/Lang/Title mirror spec §3 verbatim.
type Element struct {
	RawType       string
	ResolvedType  string
	EffectivePage int // 1-based; 0 when no ancestor carries Pg
	Alt           string
	ActualText    string
	Lang          string
	Title         string
	ID            string
	Attributes    *core.PdfObjectDictionary
	Children      []*Element
	MCIDs         []int
	MCRPages      []int // effective page per MCID in MCIDs, same index
	OBJRs         []core.PdfObject
}

// Tree is the walked result of one StructTreeRoot: the root's direct
// children plus the page-number lookup and resolved RoleMap, shared by
// every downstream check (C3, C4's table/list/heading walkers, C5).
type Tree struct {
	Roots       []*Element
	RoleMap     map[string]string // custom -> standard, first-occurrence-wins
	PageNumbers map[PageKey]int   // 1-based
}

// roleMapResolve implements spec §4.2's RoleMap resolution algorithm:
// walk name -> RoleMap[name] until a standard type is hit or a name
// repeats (cycle), returning the last reachable name either way.
func roleMapResolve(name string, roleMap map[string]string) string {
	name = StripSlash(name)
	visited := map[string]struct{}{}
	for {
		if IsStandardType(name) {
			return name
		}
		if _, seen := visited[name]; seen {
			return name
		}
		visited[name] = struct{}{}
		next, ok := roleMap[name]
		if !ok {
			return name
		}
		name = StripSlash(next)
	}
}

// BuildRoleMap reads a StructTreeRoot's /RoleMap dictionary into a
// plain map, preserving first-occurrence-wins semantics for duplicate
// keys a malformed PDF might carry (spec §4.2 tie-break note). unipdf's
// dictionary preserves insertion order via its Keys() accessor.
func BuildRoleMap(roleMapDict *core.PdfObjectDictionary) map[string]string {
	out := map[string]string{}
	if roleMapDict == nil {
		return out
	}
	for _, key := range roleMapDict.Keys() {
		name := StripSlash(string(key))
		if _, exists := out[name]; exists {
			continue // first occurrence wins
		}
		val := roleMapDict.Get(key)
		if nameVal, ok := core.GetName(val); ok {
			out[name] = StripSlash(nameVal.String())
		}
	}
	return out
}

// BuildPageNumbers builds the page-object-key -> 1-based-page-number
// lookup once per document, as required by spec §4.2.
func BuildPageNumbers(pageRefs []core.PdfObject) map[PageKey]int {
	out := map[PageKey]int{}
	for i, ref := range pageRefs {
		if key, ok := pageKeyOf(ref); ok {
			out[key] = i + 1
		}
	}
	return out
}

// Walk performs the depth-first traversal of StructTreeRoot.K described
// in spec §4.2: cycle-safe via a visited-identity set, Pg inheritance,
// MCID/OBJR collection per element.
func Walk(structTreeRootDict *core.PdfObjectDictionary, pageNumbers map[PageKey]int) *Tree {
	tree := &Tree{
		RoleMap:     BuildRoleMap(getRoleMap(structTreeRootDict)),
		PageNumbers: pageNumbers,
	}
	if structTreeRootDict == nil {
		return tree
	}
	kArr, _ := core.GetArray(structTreeRootDict.Get("K"))
	visited := map[uintptr]struct{}{}
	if kArr != nil {
		for _, child := range kArr.Elements() {
			if el := walkNode(child, 0, tree.RoleMap, pageNumbers, visited); el != nil {
				tree.Roots = append(tree.Roots, el)
			}
		}
	}
	return tree
}

func getRoleMap(structTreeRootDict *core.PdfObjectDictionary) *core.PdfObjectDictionary {
	if structTreeRootDict == nil {
		return nil
	}
	rm, _ := core.GetDict(structTreeRootDict.Get("RoleMap"))
	return rm
}

// identityOf returns a stable pointer-based identity for cycle
// detection across the K array, since PDF structure elements are
// commonly indirect objects but not always (inline dictionaries are
// legal for leaf nodes).
func identityOf(obj core.PdfObject) uintptr {
	if ind, ok := obj.(*core.PdfIndirectObject); ok {
		return uintptr(ind.ObjectNumber)<<32 | uintptr(ind.GenerationNumber)
	}
	return 0 // inline objects have no shared identity; never collide with a real one
}

func walkNode(obj core.PdfObject, inheritedPage int, roleMap map[string]string, pageNumbers map[PageKey]int, visited map[uintptr]struct{}) *Element {
	id := identityOf(obj)
	if id != 0 {
		if _, seen := visited[id]; seen {
			return nil // cycle via K; break without re-visiting (spec §3, §9)
		}
		visited[id] = struct{}{}
	}

	dict, ok := core.GetDict(obj)
	if !ok {
		return nil // an MCID int or MCR/OBJR dict belongs to the parent's K collection, not a new element
	}

	rawType := ""
	if nameObj, ok := core.GetName(dict.Get("S")); ok {
		rawType = StripSlash(nameObj.String())
	}

	page := inheritedPage
	if pg := dict.Get("Pg"); pg != nil {
		if key, ok := pageKeyOf(pg); ok {
			if num, ok := pageNumbers[key]; ok {
				page = num
			}
		}
	}

	el := &Element{
		RawType:       rawType,
		ResolvedType:  roleMapResolve(rawType, roleMap),
		EffectivePage: page,
		Alt:           getString(dict, "Alt"),
		ActualText:    getString(dict, "ActualText"),
		Lang:          getString(dict, "Lang"),
		Title:         getString(dict, "T"),
		ID:            getString(dict, "ID"),
	}
	if attrObj, ok := core.GetDict(dict.Get("A")); ok {
		el.Attributes = attrObj
	}

	kArr, _ := core.GetArray(dict.Get("K"))
	if kArr == nil {
		return el
	}
	for _, child := range kArr.Elements() {
		switch v := child.(type) {
		case *core.PdfObjectInteger:
			el.MCIDs = append(el.MCIDs, int(*v))
			el.MCRPages = append(el.MCRPages, page)
		default:
			if childDict, ok := core.GetDict(child); ok && isMCROrOBJR(childDict) {
				if isOBJR(childDict) {
					el.OBJRs = append(el.OBJRs, childDict.Get("Obj"))
					continue
				}
				// MCR: {MCID, Pg?, Stm?}
				mcidPage := page
				if pg := childDict.Get("Pg"); pg != nil {
					if key, ok := pageKeyOf(pg); ok {
						if num, ok := pageNumbers[key]; ok {
							mcidPage = num
						}
					}
				}
				if mcidObj, ok := core.GetIntVal(childDict.Get("MCID")); ok {
					el.MCIDs = append(el.MCIDs, mcidObj)
					el.MCRPages = append(el.MCRPages, mcidPage)
				}
				continue
			}
			if sub := walkNode(child, page, roleMap, pageNumbers, visited); sub != nil {
				el.Children = append(el.Children, sub)
			}
		}
	}
	return el
}

func isMCROrOBJR(dict *core.PdfObjectDictionary) bool {
	typeName, ok := core.GetName(dict.Get("Type"))
	if !ok {
		return false
	}
	t := typeName.String()
	return t == "MCR" || t == "OBJR"
}

func isOBJR(dict *core.PdfObjectDictionary) bool {
	typeName, ok := core.GetName(dict.Get("Type"))
	return ok && typeName.String() == "OBJR"
}

func getString(dict *core.PdfObjectDictionary, key string) string {
	if dict == nil {
		return ""
	}
	if s, ok := core.GetStringBytes(dict.Get(key)); ok {
		return string(s)
	}
	return ""
}

// Each walks every element of a Tree in document order, depth first,
// exactly the traversal order spec §4.2 requires for reading-order and
// heading-hierarchy checks.
func (t *Tree) Each(visit func(*Element)) {
	var walk func(*Element)
	walk = func(el *Element) {
		visit(el)
		for _, c := range el.Children {
			walk(c)
		}
	}
	for _, r := range t.Roots {
		walk(r)
	}
}

// ResolveType is exported for callers (the PDF/UA RoleMap check) that
// need to resolve a single name against a map without a full walk.
func ResolveType(name string, roleMap map[string]string) string {
	return roleMapResolve(name, roleMap)
}
