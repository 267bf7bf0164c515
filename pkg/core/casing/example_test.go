package casing_test

import (
	"fmt"

	"github.com/matzehuels/talklike/pkg/core/casing"
)

func ExampleProject() {
	fmt.Println(casing.Project("Hello", "ahoy"))
	fmt.Println(casing.Project("HELLO", "ahoy"))
	fmt.Println(casing.Project("hello", "Ahoy"))
	// Output:
	// Ahoy
	// AHOY
	// ahoy
}
