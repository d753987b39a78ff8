package supervisor

import (
	"github.com/specialistvlad/launchgrid/internal/launch"
)

// Argv returns the command-line arguments for req, excluding the program
// itself. Static arguments come first, followed by the name, namespace and
// remapping rules and the parameters file.
func Argv(req launch.LaunchRequest, paramsFile string) []string {
	argv := append([]string(nil), req.Args...)
	argv = append(argv, "--ros-args", "-r", "__node:="+req.Name)
	if req.Namespace != "" {
		argv = append(argv, "-r", "__ns:="+namespace(req.Namespace))
	}
	for _, r := range req.Remappings {
		argv = append(argv, "-r", r.From+":="+r.To)
	}
	if paramsFile != "" {
		argv = append(argv, "--params-file", paramsFile)
	}
	return argv
}

func namespace(ns string) string {
	if ns == "" || ns[0] == '/' {
		return ns
	}
	return "/" + ns
}
