package model

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// AnimationSampler holds one decoded keyframe track: input times and the
// matching output values, vec3 outputs padded to Vec4.
type AnimationSampler struct {
	Interpolation gltf.Interpolation
	Inputs        []float32
	Outputs       []mgl32.Vec4
}

// AnimationChannel binds one sampler to one transform property of one node.
type AnimationChannel struct {
	Path    gltf.TRSProperty
	Node    *Node
	Sampler int

	interpWarned bool
	outputWarned bool
}

// Animation is one named clip. Current is the clip-local playback position
// advanced by Model.Advance.
type Animation struct {
	Name     string
	Samplers []AnimationSampler
	Channels []AnimationChannel

	Start   float32
	End     float32
	Current float32
}

// Advance moves the active animation forward by dt seconds and writes the
// interpolated transforms into the targeted nodes. An out-of-range active
// index is reported once and ignored until the selection changes.
func (m *Model) Advance(dt float32) {
	if m.Active < 0 || m.Active >= len(m.Animations) {
		if !m.activeWarned {
			slog.Warn("no animation at active index", "model", m.Name, "index", m.Active, "count", len(m.Animations))
			m.activeWarned = true
		}
		return
	}
	anim := &m.Animations[m.Active]

	anim.Current += dt
	// Wraps relative to the clip end, so playback restarts from t=0 even
	// when the first keyframe sits later than that.
	if anim.Current > anim.End {
		anim.Current -= anim.End
	}

	for ci := range anim.Channels {
		ch := &anim.Channels[ci]
		s := &anim.Samplers[ch.Sampler]
		if s.Interpolation != gltf.InterpolationLinear {
			if !ch.interpWarned {
				slog.Warn("unsupported sampler interpolation, channel skipped",
					"model", m.Name, "animation", anim.Name, "interpolation", int(s.Interpolation))
				ch.interpWarned = true
			}
			continue
		}
		// Samplers whose outputs could not be decoded keep their keyframe
		// times; never index past the values that exist.
		if len(s.Outputs) < len(s.Inputs) {
			if !ch.outputWarned {
				slog.Warn("sampler has fewer outputs than keyframes, channel skipped",
					"model", m.Name, "animation", anim.Name, "outputs", len(s.Outputs), "keyframes", len(s.Inputs))
				ch.outputWarned = true
			}
			continue
		}
		for i := 0; i+1 < len(s.Inputs); i++ {
			if anim.Current < s.Inputs[i] || anim.Current > s.Inputs[i+1] {
				continue
			}
			span := s.Inputs[i+1] - s.Inputs[i]
			if span <= 0 {
				continue
			}
			a := (anim.Current - s.Inputs[i]) / span
			switch ch.Path {
			case gltf.TRSTranslation:
				ch.Node.Translation = lerpVec3(s.Outputs[i], s.Outputs[i+1], a)
			case gltf.TRSScale:
				ch.Node.Scale = lerpVec3(s.Outputs[i], s.Outputs[i+1], a)
			case gltf.TRSRotation:
				q0 := quatFromVec4(s.Outputs[i])
				q1 := quatFromVec4(s.Outputs[i+1])
				// Renormalize: repeated slerps drift off the unit sphere.
				ch.Node.Rotation = mgl32.QuatSlerp(q0, q1, a).Normalize()
			}
			break
		}
	}
}

func lerpVec3(v0, v1 mgl32.Vec4, a float32) mgl32.Vec3 {
	return mgl32.Vec3{
		v0[0] + (v1[0]-v0[0])*a,
		v0[1] + (v1[1]-v0[1])*a,
		v0[2] + (v1[2]-v0[2])*a,
	}
}

func quatFromVec4(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}
