// RebarCut - Rebar Cutting Stock Optimizer
//
// A command line tool that turns a bar cut list and a catalog of stock
// lengths into a minimum-cost purchase list and cutting plan, with Excel,
// PDF, QR tag, DXF, YAML and chart reports.
//
// Build:
//   go build -o rebarcut ./cmd/rebarcut
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o rebarcut.exe ./cmd/rebarcut
//   GOOS=darwin  GOARCH=arm64 go build -o rebarcut-darwin ./cmd/rebarcut

package main

import "github.com/piwi3910/RebarCut/internal/cli"

func main() {
	cli.Execute()
}
