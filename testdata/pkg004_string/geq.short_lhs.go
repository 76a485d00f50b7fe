package main

import (
	"github.com/vaselabs/vase"
)

func geqShortLHS() {
	a := vase.String(2)
	b := vase.String(3)
	vase.Assert(a[0] == b[0])
	vase.Assert(a[1] == b[1])

	if a >= b {
		return
	}
	return
}
