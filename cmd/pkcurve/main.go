package main

import (
	"github.com/pkanalytics/pkcurve/internal/cli"
)

func main() {
	cli.Execute()
}
