package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Skybox returns the background radiance seen along a world-space direction.
// Implementations must be safe for concurrent use.
type Skybox interface {
	Sample(direction Vec3) Vec3
}

// Blackbody maps a normalized Doppler shift and a normalized temperature,
// both in [0,1], to a luminance-flattened RGB color.
// Implementations must be safe for concurrent use.
type Blackbody interface {
	Lookup(shift, temperature float64) Vec3
}
