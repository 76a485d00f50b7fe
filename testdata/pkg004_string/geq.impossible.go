package main

import (
	"github.com/vaselabs/vase"
)

func geqImpossible() {
	a := vase.String(3)
	b := vase.String(3)
	vase.Assert(a[0] == b[0])
	vase.Assert(a[1] < b[1]) // invalidate geq
	vase.Assert(a[2] > b[2])

	if a >= b {
		return
	}
	return
}
