package transform

import (
	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/logfields"
)

// FieldBody names the variable read by env_var.
const FieldBody = "body"

// EnvVar replaces its marker with the Text value of the environment variable
// named by the body field.
type EnvVar struct{ BaseTransform }

func (EnvVar) Execute(c *Context, node, _ ast.ID) (Result, error) {
	name, ok := c.Tree.StringField(node, FieldBody)
	if !ok || name == "" {
		return Result{}, ErrInvalidTransform.
			WithContext("transform", NameEnvVar).
			WithContext("reason", "missing body field")
	}
	value, ok := c.LookupEnv(name)
	if !ok {
		return Result{}, ErrMissingEnvVar.WithContext("variable", name)
	}

	text := c.Tree.NewText(value)
	if err := c.Tree.Replace(node, text); err != nil {
		return Result{}, err
	}
	c.Logger().Debug("Substituted environment variable", "variable", name, logfields.NodeID(uint32(text)))
	return Continue(text), nil
}
