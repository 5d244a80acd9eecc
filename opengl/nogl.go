//go:build nogl
// +build nogl

package opengl

import (
	"fmt"
	"os"

	"github.com/PrincetonUniversity/boidswarm"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Title      string
	Width      int
	Height     int
	Step       func()
	ForcePause bool
	Resize     func(width, height int)
	CellGrid   boidswarm.Grid
}

// Run returns an error explaining that OpenGL support is disabled.
func Run(s *boidswarm.Swarm, conf *Config) error {
	return fmt.Errorf("%s was built without OpenGL support\n"+
		"You must specify an output file ('output' key in the config file) or a stream address.", os.Args[0])
}
