// Package icons maps icon family strings to a closed set of known
// families. Domain records store family names as free text; resolution
// against the registry happens only at render time, with FontAwesome as
// the fallback for anything unknown.
package icons

import "github.com/Carlos-Bolano/Pocka/internal/core"

type Family string

const (
	FontAwesome            Family = "FontAwesome"
	FontAwesome5           Family = "FontAwesome5"
	FontAwesome6           Family = "FontAwesome6"
	MaterialCommunityIcons Family = "MaterialCommunityIcons"
	MaterialIcons          Family = "MaterialIcons"
	Ionicons               Family = "Ionicons"
	Octicons               Family = "Octicons"
	Entypo                 Family = "Entypo"
	AntDesign              Family = "AntDesign"
)

// DefaultFamily is used when a stored family string is not registered.
const DefaultFamily = FontAwesome

var registry = map[Family]struct{}{
	FontAwesome:            {},
	FontAwesome5:           {},
	FontAwesome6:           {},
	MaterialCommunityIcons: {},
	MaterialIcons:          {},
	Ionicons:               {},
	Octicons:               {},
	Entypo:                 {},
	AntDesign:              {},
}

// Known reports whether the family is registered.
func Known(f Family) bool {
	_, ok := registry[f]
	return ok
}

// ResolveFamily maps an arbitrary stored family string to a registered
// family, falling back to DefaultFamily.
func ResolveFamily(name string) Family {
	f := Family(name)
	if Known(f) {
		return f
	}
	return DefaultFamily
}

// Resolve normalizes an icon descriptor for display. The name passes
// through untouched; only the family is defaulted.
func Resolve(icon core.Icon) core.Icon {
	return core.Icon{
		Family: string(ResolveFamily(icon.Family)),
		Name:   icon.Name,
	}
}
