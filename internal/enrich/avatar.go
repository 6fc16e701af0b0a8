package enrich

import (
	"net/url"
	"strings"
)

const defaultAvatarURL = "https://ui-avatars.com/api/"

var placeholderHosts = []string{"ui-avatars.com", "placeholder.com", "via.placeholder.com", "placehold.co"}

// AvatarGenerator builds initials-avatar URLs. The URL depends only on the
// literal name, so the same name always yields the same URL.
type AvatarGenerator struct {
	base string
}

// NewAvatarGenerator returns a generator for the avatar service at base.
func NewAvatarGenerator(base string) AvatarGenerator {
	if base == "" {
		base = defaultAvatarURL
	}
	return AvatarGenerator{base: base}
}

// Person returns the avatar URL for a philosopher.
func (g AvatarGenerator) Person(name string) string {
	return g.build(name, "0D8ABC")
}

// School returns the avatar URL for a school.
func (g AvatarGenerator) School(name string) string {
	return g.build(name, "8B4513")
}

func (g AvatarGenerator) build(name, background string) string {
	sep := "?"
	if strings.Contains(g.base, "?") {
		sep = "&"
	}
	return g.base + sep + "name=" + url.QueryEscape(name) +
		"&background=" + background + "&color=fff&size=256&bold=true"
}

// IsPlaceholder reports whether u points at the avatar service or a known
// placeholder image host.
func (g AvatarGenerator) IsPlaceholder(u string) bool {
	if u == "" {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if base, err := url.Parse(g.base); err == nil && base.Hostname() != "" && host == strings.ToLower(base.Hostname()) {
		return true
	}
	for _, h := range placeholderHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
