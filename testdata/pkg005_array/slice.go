package main

import (
	"github.com/vaselabs/vase"
)

func arraySlice() {
	a := vase.ByteSlice(4)
	var b [4]byte
	copy(b[:], a)

	if string(b[1:3]) == "XY" {
		return
	}
	return
}
