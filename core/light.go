package core

import "github.com/go-gl/mathgl/mgl32"

// LightType tags the variant held by a Light (spec.md §3.1).
type LightType uint8

const (
	LightDirectional LightType = iota
	LightSun                   // directional + angular-diameter disk, for sun-shaped highlights
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "Directional"
	case LightSun:
		return "Sun"
	case LightPoint:
		return "Point"
	case LightSpot:
		return "Spot"
	default:
		return "Unknown"
	}
}

// Light is a tagged union over the renderer's four light kinds. Grounded on
// the teacher's LightComponent (root light.go, now superseded) generalized
// from a single flat struct into the variant spec.md §3.1 describes, since a
// froxel-clustered renderer treats point/spot lights very differently from
// directional ones (only point/spot are froxelized; directional light is
// uniform across the whole scene).
type Light struct {
	Type LightType

	Position  mgl32.Vec3 // Point, Spot: world-space origin
	Direction mgl32.Vec3 // Directional, Sun, Spot: normalized world-space direction the light travels
	Color     mgl32.Vec3 // linear RGB
	Intensity float32    // lux (directional) or lumens (point/spot)

	Radius float32 // Point, Spot: influence radius in world units; 0 means unbounded

	// Spot-only.
	SpotCosOuter  float32 // cos(outer cone half-angle)
	SpotInvSinOuter float32 // 1 / sin(outer cone half-angle), precomputed for falloff math

	// Sun-only.
	SunAngularRadius float32 // radians
	SunHaloSize      float32
	SunHaloFalloff   float32
}

// IsPunctual reports whether the light has a finite world-space position
// and is therefore a froxelization candidate (Point or Spot).
func (l Light) IsPunctual() bool {
	return l.Type == LightPoint || l.Type == LightSpot
}

// IsDirectional reports whether the light is a whole-scene directional
// light (Directional or Sun), which froxelization ignores entirely.
func (l Light) IsDirectional() bool {
	return l.Type == LightDirectional || l.Type == LightSun
}

// BoundingSphere returns the light's world-space bounding sphere, used by
// froxelization's sphere-vs-froxel intersection test (spec.md §4.1). Radius
// 0 is treated as an unbounded light and excluded from froxelization by the
// caller rather than here.
func (l Light) BoundingSphere() (center mgl32.Vec3, radius float32) {
	return l.Position, l.Radius
}

// NewSpot builds a Spot light from its outer cone half-angle in radians,
// precomputing the falloff terms the way the teacher's shader-facing light
// code always does at authoring time rather than per-froxel.
func NewSpot(position, direction mgl32.Vec3, radius float32, outerHalfAngle float32) Light {
	cosOuter := mgl32.Clamp(cosf(outerHalfAngle), -1, 1)
	sinOuter := sinf(outerHalfAngle)
	invSin := float32(0)
	if sinOuter > 1e-6 {
		invSin = 1 / sinOuter
	}
	return Light{
		Type:            LightSpot,
		Position:        position,
		Direction:       direction.Normalize(),
		Radius:          radius,
		SpotCosOuter:    cosOuter,
		SpotInvSinOuter: invSin,
	}
}
