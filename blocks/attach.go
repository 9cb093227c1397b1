package blocks

import "github.com/rgonek/docblocks/paragraph"

// AttachSourceRanges returns a copy of doc in which every block whose path
// appears in ranges carries its source paragraph range. The input document
// is not modified.
func AttachSourceRanges(doc Document, ranges map[string]paragraph.Range) Document {
	out := CloneDocument(doc)
	if len(ranges) == 0 {
		return out
	}
	Walk(out.Blocks, func(b Block) bool {
		m := b.meta()
		if r, ok := ranges[m.Path]; ok {
			m.SourceRange = &r
		}
		return true
	})
	return out
}
