// Package hcl_adapter loads launch descriptors written in HCL.
//
// A descriptor is one or more .hcl files containing `argument`, `process`,
// `lifecycle` and `qos` blocks. Expressions inside process and argument
// blocks are kept unevaluated and wrapped as launch.Substitution or
// launch.Value, so they are resolved only when a plan is built. They read
// resolved arguments through the `arg` object:
//
//	process "map_server" {
//	  package    = "nav2_map_server"
//	  executable = "map_server"
//	  parameter_file { path = arg.params_file }
//	  parameters {
//	    yaml_filename = arg.map
//	  }
//	}
package hcl_adapter
