// Command beankit runs a bean registry walkthrough against the configured
// manager: replacement through a live accessor, type checks, namespaces and
// thread isolation.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
