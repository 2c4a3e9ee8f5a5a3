package scenegraph

// ButtonState is the touch state of a button between frames.
type ButtonState int

const (
	// ButtonIdle means no pointer touched the button on the last update.
	ButtonIdle ButtonState = iota
	// ButtonTouching means a pointer touched the button on the last update.
	ButtonTouching
)

func (s ButtonState) String() string {
	switch s {
	case ButtonIdle:
		return "idle"
	case ButtonTouching:
		return "touching"
	default:
		return "unknown"
	}
}

// Button is a pressable target anchored to a scene node. OnPress fires once each time the button goes from
// untouched to touched.
type Button struct {
	Node    NodeID
	OnPress func()

	state ButtonState
}

// NewButton returns an idle button on node.
func NewButton(node NodeID, onPress func()) *Button {
	return &Button{Node: node, OnPress: onPress}
}

// State returns the state after the last Update.
func (b *Button) State() ButtonState {
	return b.state
}

// Update advances the button with this frame's intersection result and reports whether it was pressed.
func (b *Button) Update(intersected bool) bool {
	switch b.state {
	case ButtonIdle:
		if !intersected {
			return false
		}
		b.state = ButtonTouching
		if b.OnPress != nil {
			b.OnPress()
		}
		return true
	case ButtonTouching:
		if !intersected {
			b.state = ButtonIdle
		}
	}
	return false
}

// Reset puts the button back in the idle state without firing.
func (b *Button) Reset() {
	b.state = ButtonIdle
}
