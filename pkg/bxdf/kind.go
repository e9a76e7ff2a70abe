package bxdf

// Kind is a bit set classifying a scattering function by direction
// (reflection/transmission) and sharpness (diffuse/glossy/specular)
type Kind uint8

const (
	Reflection Kind = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular
)

// All matches every scattering function
const All = Reflection | Transmission | Diffuse | Glossy | Specular

// Has reports whether all bits of flag are set in k
func (k Kind) Has(flag Kind) bool {
	return k&flag == flag
}

// Matches reports whether k is fully contained in the query mask, so a
// DIFFUSE|REFLECTION lobe matches ALL but not SPECULAR|REFLECTION
func (k Kind) Matches(query Kind) bool {
	return k&query == k
}

func (k Kind) String() string {
	if k == 0 {
		return "Kind()"
	}
	s := "Kind("
	names := []struct {
		flag Kind
		name string
	}{
		{Reflection, "Reflection"},
		{Transmission, "Transmission"},
		{Diffuse, "Diffuse"},
		{Glossy, "Glossy"},
		{Specular, "Specular"},
	}
	first := true
	for _, n := range names {
		if k.Has(n.flag) {
			if !first {
				s += "|"
			}
			s += n.name
			first = false
		}
	}
	return s + ")"
}
