package main

import (
	"github.com/NVIDIA/xm-capture/pkg/cli"
)

func main() {
	cli.Execute()
}
