package main

import (
	"github.com/vaselabs/vase"
)

func leqShortRHS() {
	a := vase.String(3)
	b := vase.String(2)
	vase.Assert(a[0] == b[0])
	vase.Assert(a[1] == b[1])

	if a <= b {
		return
	}
	return
}
