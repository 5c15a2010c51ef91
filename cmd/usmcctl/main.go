package main

import (
	"github.com/motionworks/usmc.go/pkg/cli/sh"

	_ "github.com/motionworks/usmc.go/pkg/cli/cmds/motor"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
