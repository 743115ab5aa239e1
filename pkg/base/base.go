// Package base filters mobile-base velocity setpoints before dispatch:
// moving-average smoothing against teleop jitter, a linear/angular coupling
// correction, and an angular damping pass.
//
// The three transforms are independent; pipeline order is up to the caller.
package base

// Action is one base velocity command.
type Action struct {
	Linear  float64 // forward velocity
	Angular float64 // yaw velocity
}

// Tuning constants. The coupling coefficient and angular scale are
// empirically tuned per rig; keep them on the Filter rather than inlining.
const (
	DefaultWindow       = 5
	DefaultCoupling     = 0
	DefaultAngularScale = 0.9
)

// Filter holds the smoothing and correction parameters for one rig.
type Filter struct {
	Window       int     // moving-average width
	Coupling     float64 // linear velocity picked up per unit angular velocity
	AngularScale float64 // damping applied to angular setpoints
}

// DefaultFilter returns the stock tuning.
func DefaultFilter() Filter {
	return Filter{
		Window:       DefaultWindow,
		Coupling:     DefaultCoupling,
		AngularScale: DefaultAngularScale,
	}
}

// Smooth applies an unweighted moving average of width f.Window to each
// component independently. Output length equals input length; windows
// overhanging the edges treat missing samples as zero and still divide by the
// full window, matching same-mode convolution against a ones(n)/n kernel.
func (f Filter) Smooth(seq []Action) []Action {
	w := f.Window
	if w < 1 {
		w = 1
	}
	// Same-mode window placement: for even widths the extra tap trails.
	lead := (w - 1) / 2

	out := make([]Action, len(seq))
	for i := range seq {
		var lin, ang float64
		for k := 0; k < w; k++ {
			j := i + lead - k
			if j < 0 || j >= len(seq) {
				continue
			}
			lin += seq[j].Linear
			ang += seq[j].Angular
		}
		out[i] = Action{Linear: lin / float64(w), Angular: ang / float64(w)}
	}
	return out
}

// CalibrateLinearVel removes the linear velocity induced by turning:
// linear' = linear - coupling*angular. With coupling 0 the linear component
// is unchanged.
func (f Filter) CalibrateLinearVel(a Action) Action {
	return Action{
		Linear:  a.Linear - f.Coupling*a.Angular,
		Angular: a.Angular,
	}
}

// Postprocess damps the angular component by f.AngularScale and passes the
// linear component through.
func (f Filter) Postprocess(a Action) Action {
	return Action{
		Linear:  a.Linear,
		Angular: a.Angular * f.AngularScale,
	}
}
