package ecovalley

import (
	"io"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes a deep, type-annotated rendering of v to w.
func Dump(w io.Writer, v ...any) {
	dumpConfig.Fdump(w, v...)
}
