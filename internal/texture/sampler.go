package texture

// Filter is a texel filter.
type Filter int

// Filters.
const (
	FilterLinear Filter = iota
	FilterNearest
)

// AddressMode is how texture coordinates outside [0, 1] wrap.
type AddressMode int

// Address modes.
const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressMirroredRepeat
)

// Sampler describes how a texture is sampled.
type Sampler struct {
	MagFilter    Filter
	MinFilter    Filter
	MipmapFilter Filter
	MaxLOD       float32 // 0 disables the mip chain beyond level 0.
	AddressU     AddressMode
	AddressV     AddressMode
}

// DefaultSampler is used for textures without a sampler: trilinear, repeating.
func DefaultSampler() Sampler {
	return Sampler{MaxLOD: 1000}
}

// glTF sampler enums.
const (
	glNearest              = 9728
	glLinear               = 9729
	glNearestMipmapNearest = 9984
	glLinearMipmapNearest  = 9985
	glNearestMipmapLinear  = 9986
	glLinearMipmapLinear   = 9987

	glRepeat         = 10497
	glClampToEdge    = 33071
	glMirroredRepeat = 33648
)

// SamplerFromGL maps glTF sampler enums to a Sampler. Nil fields and unknown
// values keep the defaults.
func SamplerFromGL(mag, min, wrapS, wrapT *int) Sampler {
	s := DefaultSampler()

	if mag != nil && *mag == glNearest {
		s.MagFilter = FilterNearest
	}

	if min != nil {
		switch *min {
		case glNearest:
			s.MinFilter, s.MipmapFilter, s.MaxLOD = FilterNearest, FilterNearest, 0
		case glLinear:
			s.MinFilter, s.MipmapFilter, s.MaxLOD = FilterLinear, FilterNearest, 0
		case glNearestMipmapNearest:
			s.MinFilter, s.MipmapFilter = FilterNearest, FilterNearest
		case glLinearMipmapNearest:
			s.MinFilter, s.MipmapFilter = FilterLinear, FilterNearest
		case glNearestMipmapLinear:
			s.MinFilter, s.MipmapFilter = FilterNearest, FilterLinear
		case glLinearMipmapLinear:
			s.MinFilter, s.MipmapFilter = FilterLinear, FilterLinear
		}
	}

	s.AddressU = addressMode(wrapS)
	s.AddressV = addressMode(wrapT)
	return s
}

func addressMode(v *int) AddressMode {
	if v == nil {
		return AddressRepeat
	}
	switch *v {
	case glClampToEdge:
		return AddressClampToEdge
	case glMirroredRepeat:
		return AddressMirroredRepeat
	default:
		return AddressRepeat
	}
}
