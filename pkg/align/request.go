package align

// AxisModes holds one Mode per axis, indexed X, Y, Z.
type AxisModes [3]Mode

// Request holds the operator parameters. It is copied by value into every
// invocation.
type Request struct {
	IncludeChildren bool `json:"include_children" yaml:"include_children" env:"INCLUDE_CHILDREN"`
	ModeX           Mode `json:"mode_x" yaml:"mode_x" env:"MODE_X"`
	ModeY           Mode `json:"mode_y" yaml:"mode_y" env:"MODE_Y"`
	ModeZ           Mode `json:"mode_z" yaml:"mode_z" env:"MODE_Z"`
}

// DefaultRequest returns the defaults: include children, X on the minimum,
// Y on the center, Z on the minimum.
func DefaultRequest() Request {
	return Request{
		IncludeChildren: true,
		ModeX:           ModeMin,
		ModeY:           ModeCenter,
		ModeZ:           ModeMin,
	}
}

// Modes returns the per-axis modes as an array.
func (r Request) Modes() AxisModes {
	return AxisModes{r.ModeX, r.ModeY, r.ModeZ}
}
