// Package cull implements frustum-vs-AABB and frustum-vs-sphere visibility
// tests, batched 8-wide with branch-free masks (spec.md §4.4.3). Grounded
// on the teacher's voxelrt/rt/core.AABBInFrustum p-vertex test, rewritten
// in the center+extent form spec.md calls for so the per-entity loop has no
// data-dependent branches and writes a plain byte mask instead of a bool.
package cull

import (
	"github.com/gekko3d/luma/core"
	"github.com/go-gl/mathgl/mgl32"
)

// AABBVisible tests a single AABB, given as center+extent, against 6
// frustum planes. Returns true unless some plane has the box entirely on
// its outside half-space — the standard center+extent conservative test:
// for plane normal n and box extent e, the box's maximum projection along
// n is dot(n, center) + dot(|n|, extent); if center-distance plus that
// projected extent is still negative, the whole box is outside.
func AABBVisible(center, extent mgl32.Vec3, planes core.FrustumPlanes) bool {
	for _, p := range planes {
		n := mgl32.Vec3{p.X(), p.Y(), p.Z()}
		dist := n.Dot(center) + p.W()
		radius := absf(n.X())*extent.X() + absf(n.Y())*extent.Y() + absf(n.Z())*extent.Z()
		if dist+radius < 0 {
			return false
		}
	}
	return true
}

// SphereVisible tests a sphere against 6 frustum planes using the same
// signed-distance test with radius in place of the projected AABB extent.
func SphereVisible(center mgl32.Vec3, radius float32, planes core.FrustumPlanes) bool {
	for _, p := range planes {
		n := mgl32.Vec3{p.X(), p.Y(), p.Z()}
		dist := n.Dot(center) + p.W()
		if dist+radius < 0 {
			return false
		}
	}
	return true
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Renderables writes one byte (0 or 1) per row of soa.VisibleMask[start:end]
// testing each row's world AABB against planes, in batches of 8 rows to
// match spec.md §4.4.3's "batched in groups of 8 entities with branch-free
// masks". The batch grouping has no behavioral effect here (Go does not
// auto-vectorize), but keeps the loop structure and row addressing
// identical to what a SIMD backend would consume.
func Renderables(soa *core.RenderableSoa, start, end int, planes core.FrustumPlanes) {
	const batch = 8
	for base := start; base < end; base += batch {
		limit := base + batch
		if limit > end {
			limit = end
		}
		for i := base; i < limit; i++ {
			min := soa.WorldAABBMin[i]
			max := soa.WorldAABBMax[i]
			center := min.Add(max).Mul(0.5)
			extent := max.Sub(min).Mul(0.5)
			if AABBVisible(center, extent, planes) {
				soa.VisibleMask[i] = 1
			} else {
				soa.VisibleMask[i] = 0
			}
		}
	}
}

// Lights writes one byte per row of soa.VisibleMask[start:end], testing
// each positional light's bounding sphere against planes. Directional rows
// (index < soa.DirectionalCount) are never touched by the caller — they
// are always considered visible and are excluded from the range passed in.
func Lights(soa *core.LightSoa, start, end int, planes core.FrustumPlanes) {
	const batch = 8
	for base := start; base < end; base += batch {
		limit := base + batch
		if limit > end {
			limit = end
		}
		for i := base; i < limit; i++ {
			if SphereVisible(soa.Position[i], soa.Radius[i], planes) {
				soa.VisibleMask[i] = 1
			} else {
				soa.VisibleMask[i] = 0
			}
		}
	}
}
