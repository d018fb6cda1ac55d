package core

// TransparencyMode selects how a blended primitive's two-sided draw is
// split into one or two commands (spec.md §4.2.4).
type TransparencyMode uint8

const (
	// TransparencyDefault draws the primitive once with the culling mode
	// the primitive already specifies; the second command slot is
	// cancelled by tagging it with the sentinel PASS value (spec.md §11
	// Open Question 3, preserved exactly from the source renderer).
	TransparencyDefault TransparencyMode = iota
	// TransparencyTwoPassesTwoSides draws back faces then front faces as
	// two separate commands (spec.md §4.2.4).
	TransparencyTwoPassesTwoSides
	// TransparencyTwoPassesOneSide draws the same winding twice, e.g. for
	// custom refraction passes.
	TransparencyTwoPassesOneSide
)

// BlendMode is the compositing mode a material instance draws with.
// Only Blended materials enter the BLENDED pass bucket (spec.md §4.2.2);
// everything else is Opaque and goes through COLOR/DEPTH.
type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendTransparent
	BlendFade
	BlendAdd
	BlendMasked
)

// MaterialVariant indexes the shader permutation a primitive draws with
// (e.g. skinned vs rigid, shadow vs color). Command generation groups
// commands by variant + material ID so adjacent commands reuse GPU state
// (spec.md §4.2.3's MATERIAL_VARIANT / MATERIAL_ID fields).
type MaterialVariant uint8

// MaterialInstance is an opaque handle to a compiled material's
// parameter block. Its contents (uniform values, textures) are out of
// scope (spec.md §1: "shader/material compilation"); the core only needs
// a stable, hashable identity, a blend mode, and a transparency mode to
// sort and batch commands correctly.
type MaterialInstance struct {
	ID               uint32
	Variant          MaterialVariant
	Blend            BlendMode
	Transparency     TransparencyMode
	AlphaToCoverage  bool
	DoubleSided      bool
	HasDepthWrite    bool
}

// IsBlended reports whether the material belongs in the BLENDED pass
// bucket rather than COLOR/DEPTH.
func (m MaterialInstance) IsBlended() bool {
	return m.Blend != BlendOpaque && m.Blend != BlendMasked
}
