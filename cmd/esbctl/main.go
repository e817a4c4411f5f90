package main

//go-build: CGO_ENABLED=0

import (
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/cli"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/uart"
)

func init() {
	uart.SetupFlags()
}

func main() {
	cli.Main()
}
