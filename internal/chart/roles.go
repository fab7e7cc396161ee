package chart

import (
	"strings"

	"rivals-tracker/internal/domain"
)

var heroRoles = map[string]domain.Role{
	"angela":          domain.RoleVanguard,
	"captain america": domain.RoleVanguard,
	"doctor strange":  domain.RoleVanguard,
	"emma frost":      domain.RoleVanguard,
	"groot":           domain.RoleVanguard,
	"hulk":            domain.RoleVanguard,
	"magneto":         domain.RoleVanguard,
	"peni parker":     domain.RoleVanguard,
	"rogue":           domain.RoleVanguard,
	"the thing":       domain.RoleVanguard,
	"thor":            domain.RoleVanguard,
	"venom":           domain.RoleVanguard,

	"black panther":    domain.RoleDuelist,
	"black widow":      domain.RoleDuelist,
	"blade":            domain.RoleDuelist,
	"daredevil":        domain.RoleDuelist,
	"hawkeye":          domain.RoleDuelist,
	"hela":             domain.RoleDuelist,
	"human torch":      domain.RoleDuelist,
	"iron fist":        domain.RoleDuelist,
	"iron man":         domain.RoleDuelist,
	"phoenix":          domain.RoleDuelist,
	"magik":            domain.RoleDuelist,
	"mister fantastic": domain.RoleDuelist,
	"moon knight":      domain.RoleDuelist,
	"namor":            domain.RoleDuelist,
	"psylocke":         domain.RoleDuelist,
	"scarlet witch":    domain.RoleDuelist,
	"spider-man":       domain.RoleDuelist,
	"squirrel girl":    domain.RoleDuelist,
	"star-lord":        domain.RoleDuelist,
	"storm":            domain.RoleDuelist,
	"the punisher":     domain.RoleDuelist,
	"winter soldier":   domain.RoleDuelist,
	"wolverine":        domain.RoleDuelist,

	"adam warlock":        domain.RoleStrategist,
	"cloak & dagger":      domain.RoleStrategist,
	"gambit":              domain.RoleStrategist,
	"invisible woman":     domain.RoleStrategist,
	"jeff the land shark": domain.RoleStrategist,
	"loki":                domain.RoleStrategist,
	"luna snow":           domain.RoleStrategist,
	"mantis":              domain.RoleStrategist,
	"rocket raccoon":      domain.RoleStrategist,
	"ultron":              domain.RoleStrategist,
}

var roleColors = map[domain.Role]string{
	domain.RoleVanguard:   "#3B82F6",
	domain.RoleDuelist:    "#EF4444",
	domain.RoleStrategist: "#10B981",
}

// in-game character screen colours
var heroColors = map[string]string{
	"angela":          "#EB942E",
	"captain america": "#3872B1",
	"doctor strange":  "#DB635C",
	"emma frost":      "#35ADE4",
	"groot":           "#83A862",
	"hulk":            "#3E7C59",
	"magneto":         "#53747B",
	"peni parker":     "#DF5C4F",
	"rogue":           "#D5B932",
	"the thing":       "#DDA664",
	"thor":            "#596BAF",
	"venom":           "#2A303E",

	"black panther":    "#674B80",
	"black widow":      "#555B6A",
	"blade":            "#B2473C",
	"daredevil":        "#D32852",
	"hawkeye":          "#A06EC7",
	"hela":             "#388C8C",
	"human torch":      "#C56453",
	"iron fist":        "#16948A",
	"iron man":         "#E0595F",
	"phoenix":          "#DB5D51",
	"magik":            "#90625F",
	"mister fantastic": "#2DCCE8",
	"moon knight":      "#6F8A9F",
	"namor":            "#23948A",
	"psylocke":         "#9169AB",
	"scarlet witch":    "#D34663",
	"spider-man":       "#DF5658",
	"squirrel girl":    "#DF9A4E",
	"star-lord":        "#4680D8",
	"storm":            "#435074",
	"the punisher":     "#4A5A6C",
	"winter soldier":   "#6D7F41",
	"wolverine":        "#BF9729",

	"adam warlock":        "#C28B43",
	"cloak & dagger":      "#889BFD",
	"gambit":              "#D763A0",
	"invisible woman":     "#53C2ED",
	"jeff the land shark": "#5C7AA5",
	"loki":                "#4D8961",
	"luna snow":           "#0E7EC6",
	"mantis":              "#6C8C66",
	"rocket raccoon":      "#D47253",
	"ultron":              "#6B779F",
}

var fallbackColors = []string{"#9333EA", "#F59E0B", "#EC4899", "#06B6D4", "#8B5CF6"}

func normalizeHero(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoleOf looks up a hero by case-insensitive name.
func RoleOf(heroName string) (domain.Role, bool) {
	role, ok := heroRoles[normalizeHero(heroName)]
	return role, ok
}

func RoleColor(role domain.Role) string {
	return roleColors[role]
}

// HeroColor returns the hero's colour, cycling through the fallback palette by index for
// unknown heroes.
func HeroColor(heroName string, index int) string {
	if c, ok := heroColors[normalizeHero(heroName)]; ok {
		return c
	}
	if index < 0 {
		index = -index
	}
	return fallbackColors[index%len(fallbackColors)]
}

func CapitalizeWords(text string) string {
	words := strings.Split(text, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
