package classifier

import "strings"

// Category groups philosophers for generic biography templates.
type Category string

const (
	CategoryPresocratic  Category = "presocratic"
	CategoryAncient      Category = "ancient"
	CategoryMedieval     Category = "medieval"
	CategoryEastern      Category = "eastern"
	CategoryModern       Category = "modern"
	CategoryContemporary Category = "contemporary"
	CategoryUnknown      Category = ""
)

var (
	easternMarkers = []string{
		"tzu", "zi", "confucio", "confucius", "buda", "buddha", "mencio", "mencius",
		"nagarjuna", "shankara", "dogen", "mozi", "zhuangzi", "laozi", "xunzi",
	}
	presocraticMarkers = []string{
		" de mileto", " de elea", " de efeso", " de samos", " de abdera",
		" de clazomenas", " de agrigento", " de colofon",
	}
	ancientMarkers = []string{
		" de citio", " de atenas", " de estagira", " de alejandria", " de sinope",
		" de samotracia", " de rodas", " de hierapolis", " aurelio", " de cirene",
	}
	medievalMarkers = []string{
		"san ", "santo ", " de aquino", " de canterbury", " de ockham", " de hipona",
		" escoto", " de bingen", " de clairvaux",
	}
)

// Classify infers a template category from the display name and epoch label.
// Name markers win over the epoch so that, for example, an ancient eastern thinker
// gets the eastern template.
func Classify(name, epoch string) Category {
	folded := " " + strings.ToLower(FoldAccents(NormalizeText(name))) + " "

	for _, token := range strings.Fields(folded) {
		for _, marker := range easternMarkers {
			if token == marker || (len(marker) > 3 && strings.HasSuffix(token, marker)) {
				return CategoryEastern
			}
		}
	}
	if containsAny(folded, presocraticMarkers) {
		return CategoryPresocratic
	}
	if containsAny(folded, medievalMarkers) {
		return CategoryMedieval
	}
	if containsAny(folded, ancientMarkers) {
		return CategoryAncient
	}

	switch NormalizeEpoch(epoch) {
	case EpochAncient:
		return CategoryAncient
	case EpochMedieval:
		return CategoryMedieval
	case EpochModern:
		return CategoryModern
	case EpochContemporary:
		return CategoryContemporary
	}

	return CategoryUnknown
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
