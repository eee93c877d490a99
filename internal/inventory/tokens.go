package inventory

import "strings"

// Token tables are matched as case-insensitive substrings, in order.
var (
	weaponTokens = []string{"pistol", "gun", "rifle", "shotgun", "weapon", "firearm"}
	ammoTokens   = []string{"ammo", "ammunition", "bullet", "round", "cartridge", "shell", "magazine", "mag", "clip"}
	cashKinds    = []string{"cash", "money", "currency"}
)

// IsWeapon reports whether the name or kind matches a weapon token.
func IsWeapon(name, kind string) bool {
	return matchAny(weaponTokens, name, kind)
}

// IsAmmo reports whether the name or kind matches an ammunition token.
func IsAmmo(name, kind string) bool {
	return matchAny(ammoTokens, name, kind)
}

// IsCash reports whether the item is money. Cash is never confiscated.
func IsCash(name, kind string) bool {
	k := strings.ToLower(kind)
	for _, c := range cashKinds {
		if strings.Contains(k, c) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(name), "cash")
}

func matchAny(tokens []string, fields ...string) bool {
	for _, f := range fields {
		f = strings.ToLower(f)
		if f == "" {
			continue
		}
		for _, t := range tokens {
			if strings.Contains(f, t) {
				return true
			}
		}
	}
	return false
}
