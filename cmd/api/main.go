// @title           Taskboard API
// @version         1.0
// @description     Task CRUD API with search, completion and pluggable storage.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
