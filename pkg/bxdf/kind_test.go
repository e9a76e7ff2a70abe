package bxdf

import "testing"

func TestKindHas(t *testing.T) {
	k := Diffuse | Reflection
	if !k.Has(Diffuse) || !k.Has(Reflection) {
		t.Error("Has: missing own flags")
	}
	if k.Has(Specular) {
		t.Error("Has: reported unset flag")
	}
	if !k.Has(Diffuse | Reflection) {
		t.Error("Has: combined flags should match")
	}
}

func TestKindMatches(t *testing.T) {
	diffuse := Diffuse | Reflection
	specular := Specular | Reflection

	if !diffuse.Matches(All) {
		t.Error("diffuse lobe should match ALL")
	}
	if !diffuse.Matches(Diffuse | Glossy | Reflection) {
		t.Error("diffuse lobe should match a superset mask")
	}
	if diffuse.Matches(Specular | Reflection) {
		t.Error("diffuse lobe should not match a specular-only mask")
	}

	// Excluding the specular bit from the mask drops specular lobes
	nonSpecular := All &^ Specular
	if specular.Matches(nonSpecular) {
		t.Error("specular lobe should not match a non-specular mask")
	}
	if !diffuse.Matches(nonSpecular) {
		t.Error("diffuse lobe should match a non-specular mask")
	}
}
