package utils

// Guard runs a cleanup when a function that builds up a resource returns early with an error. Use it as:
//
//	guard := NewGuard(scene.Teardown)
//	defer guard.OnFail()
//	if err != nil { return nil, err }
//	guard.Success()
//	return scene, nil
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success marks the guarded function as succeeded.
func (guard *Guard) Success() {
	guard.success = true
}
