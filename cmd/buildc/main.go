package main

import (
	"os"

	"github.com/goplus/buildc/cmd/buildc/internal"
)

func main() {
	os.Exit(internal.Execute())
}
