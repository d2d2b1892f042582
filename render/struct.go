package render

import (
	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/ops"
)

// structure renders the ops after a PushStruct as a braced block one level
// deeper than depth. cursor is the first op inside the structure. It
// returns the cursor of the matching PopStruct.
func (p *printer) structure(base uint32, seq *ops.Sequence, cursor, depth int, path []string) (int, error) {
	p.w.WriteString("{\n")

	end, err := p.walk(base, seq, cursor, depth+1, path)
	if err != nil {
		return end, err
	}
	if end >= seq.Len() {
		e := errors.Unbalanced(seq.Name(), cursor-1, "push without matching pop")
		e.Phase = errors.PhaseRender
		e.Path = path
		return end, e
	}

	p.indent(depth)
	p.w.WriteByte('}')
	return end, nil
}
