package main

import (
	"fmt"
	exit "os"
)

func helper() {
	exit.Exit(2)
}

func main() {
	defer fmt.Println("bye")
	go func() {
		exit.Exit(3)
	}()
	if len(exit.Args) > 1 {
		exit.Exit(1) // want "do not call os.Exit inside main"
	}
	helper()
}
