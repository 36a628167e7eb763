package shader

import _ "embed"

// Base program stages.
var (
	//go:embed glsl/toon.vert
	toonVertex string

	//go:embed glsl/toon.frag
	toonFragment string

	//go:embed glsl/ink.vert
	inkVertex string

	//go:embed glsl/ink.frag
	inkFragment string
)

// Module chunks. Each module ships an enabled and a disabled body defining
// the same functions, so base stages call them unconditionally.
var (
	//go:embed glsl/skinning.glsl
	skinningOn string

	//go:embed glsl/skinning_off.glsl
	skinningOff string

	//go:embed glsl/texture.glsl
	textureOn string

	//go:embed glsl/texture_off.glsl
	textureOff string

	//go:embed glsl/colour_reveal.glsl
	colourRevealOn string

	//go:embed glsl/colour_reveal_off.glsl
	colourRevealOff string

	//go:embed glsl/ink_gaps.glsl
	inkGapsOn string

	//go:embed glsl/ink_gaps_off.glsl
	inkGapsOff string
)
