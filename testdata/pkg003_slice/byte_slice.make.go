package main

import (
	"github.com/vaselabs/vase"
)

func byteSliceMake() {
	i, j := 2, 3
	b := make([]byte, i, j)
	b[0] = vase.Byte()
	b[1] = vase.Byte()

	if string(b) == "XY" {
		return
	}
	return
}
