// nrrdtool inspects, validates and converts NRRD files.
//
// Usage:
//
//	nrrdtool check [--strict] [--quiet] <file> [<file> ...]
//	nrrdtool info [--format text|yaml] <file>
//	nrrdtool convert [--encoding raw|ascii] [--endian little|big] <in> <out>
//	nrrdtool compare [--tolerance t] [--ignore-keys] <a> <b>
//	nrrdtool config init [--force] <path>
//
// Defaults for every flag can be supplied with --config <file.yaml>.
package main

import "github.com/mrjoshuak/go-nrrd/cmd/nrrdtool/cmd"

func main() {
	cmd.Execute()
}
