package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Arguments []*hclArgument  `hcl:"argument,block"`
	Processes []*hclProcess   `hcl:"process,block"`
	Lifecycle []*hclLifecycle `hcl:"lifecycle,block"`
	QoS       []*hclQoS       `hcl:"qos,block"`
}

// hclArgument is an `argument "name" { ... }` block.
type hclArgument struct {
	Name        string         `hcl:"name,label"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
	Choices     []string       `hcl:"choices,optional"`
}

// hclProcess is a `process "id" { ... }` block. Its body is decoded by hand
// against processBodySchema because parameter blocks of different types must
// keep their relative source order.
type hclProcess struct {
	ID   string   `hcl:"id,label"`
	Body hcl.Body `hcl:",remain"`
}

// hclLifecycle is a `lifecycle "name" { ... }` block.
type hclLifecycle struct {
	Name      string         `hcl:"name,label"`
	Manager   string         `hcl:"manager,optional"`
	NodeNames []string       `hcl:"node_names"`
	Autostart hcl.Expression `hcl:"autostart,optional"`
}

// hclQoS is a `qos "name" { ... }` block.
type hclQoS struct {
	Name        string `hcl:"name,label"`
	Reliability string `hcl:"reliability,optional"`
	Durability  string `hcl:"durability,optional"`
	Depth       int    `hcl:"depth,optional"`
}

// processBodySchema defines the expected structure of a `process` block's body.
var processBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "package"},
		{Name: "executable", Required: true},
		{Name: "name"},
		{Name: "namespace"},
		{Name: "output"},
		{Name: "condition"},
		{Name: "unless"},
		{Name: "arguments"},
		{Name: "depends_on"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameter_file"},
		{Type: "parameters"},
		{Type: "remap"},
	},
}

var parameterFileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "path", Required: true}},
}

var remapSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "from", Required: true},
		{Name: "to", Required: true},
	},
}
