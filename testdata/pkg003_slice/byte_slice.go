package main

import (
	"github.com/vaselabs/vase"
)

func sliceByteSlice() {
	a := vase.ByteSlice(4)
	b := a[1:3]
	s := string(b)

	if s == "XY" {
		return
	}
	return
}
