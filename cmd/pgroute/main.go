package main

import (
	"context"

	routecmd "gfx.cafe/gfx/pgroute/cmd"
	"gfx.cafe/util/go/gotel"
)

func main() {
	fn, _ := gotel.InitTracing(context.Background(), gotel.WithServiceName("pgroute"))
	defer fn(context.Background())

	routecmd.Main()
}
