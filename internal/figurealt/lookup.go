// Package figurealt implements C3: a single pass over the walked
// structure tree collecting the set of image XObjects and MCIDs that
// are reachable from a Figure element carrying Alt or ActualText.
// Grounded on the same structure-tree walk as package structtree; kept
// separate because spec §4.3 calls it out as its own component with
// its own false-positive/false-negative rationale.
package figurealt

import (
	"github.com/unidoc/unipdf/v3/core"

	"github.com/docaccess/pdfguard/internal/structtree"
)

// ObjKey identifies an XObject by its indirect object identity.
type ObjKey struct {
	Num int64
	Gen int64
}

// Lookup is the precomputed alt-text reachability index.
type Lookup struct {
	XObjectKeys map[ObjKey]struct{}
	PageMCIDs   map[int]map[int]struct{} // page -> set of MCIDs
}

// Build walks tree once, collecting every XObject reached via OBJR
// and every MCID reached via MCR under a Figure that carries Alt or
// ActualText.
func Build(tree *structtree.Tree) *Lookup {
	l := &Lookup{
		XObjectKeys: map[ObjKey]struct{}{},
		PageMCIDs:   map[int]map[int]struct{}{},
	}
	tree.Each(func(el *structtree.Element) {
		if el.ResolvedType != "Figure" {
			return
		}
		if el.Alt == "" && el.ActualText == "" {
			return
		}
		for _, objr := range el.OBJRs {
			if key, ok := objKeyOf(objr); ok {
				l.XObjectKeys[key] = struct{}{}
			}
		}
		for i, mcid := range el.MCIDs {
			page := el.EffectivePage
			if i < len(el.MCRPages) {
				page = el.MCRPages[i]
			}
			if l.PageMCIDs[page] == nil {
				l.PageMCIDs[page] = map[int]struct{}{}
			}
			l.PageMCIDs[page][mcid] = struct{}{}
		}
	})
	return l
}

func objKeyOf(obj core.PdfObject) (ObjKey, bool) {
	ind, ok := core.GetIndirect(obj)
	if !ok {
		return ObjKey{}, false
	}
	indirect, ok := ind.(*core.PdfIndirectObject)
	if !ok {
		return ObjKey{}, false
	}
	return ObjKey{Num: indirect.ObjectNumber, Gen: indirect.GenerationNumber}, true
}

// HasFigureAltText reports whether xobject is reachable from a Figure
// that carries Alt/ActualText, per spec §4.3's rationale: must not
// false-positive when MCID wiring is incomplete but the Figure itself
// carries Alt, and must not false-negative when the Figure references
// the image via OBJR rather than MCID.
func (l *Lookup) HasFigureAltText(xobject core.PdfObject) bool {
	key, ok := objKeyOf(xobject)
	if !ok {
		return false
	}
	_, found := l.XObjectKeys[key]
	return found
}

// HasMCIDAltText reports whether the given MCID on page is reachable
// from an alt-bearing Figure via MCR, the complement path to OBJR.
func (l *Lookup) HasMCIDAltText(page, mcid int) bool {
	mcids, ok := l.PageMCIDs[page]
	if !ok {
		return false
	}
	_, found := mcids[mcid]
	return found
}
