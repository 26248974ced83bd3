package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/robotalks/amulet.go/pkg/env"
	"github.com/robotalks/amulet.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	defer env.Close()
	framework.NewLoop().Add(env).RunOrFail()
}
