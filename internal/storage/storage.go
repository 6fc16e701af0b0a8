// Package storage mirrors catalog images into an object store and renders their public URLs.
package storage

import (
	"context"
	"net/url"
	"strings"

	"github.com/palemoky/philosophy-catalog-api/internal/classifier"
)

// ObjectStore is the minimal bucket surface the image mirror needs.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	URL(key string) string
}

var keyCleaner = strings.NewReplacer(" ", "-", "'", "", `"`, "")

func safeName(name string) string {
	return keyCleaner.Replace(strings.ToLower(classifier.FoldAccents(strings.TrimSpace(name))))
}

// PortraitKey returns the object key for a person's portrait.
func PortraitKey(name string) string {
	return "authors/" + safeName(name) + ".jpg"
}

// SchoolImageKey returns the object key for a school's illustration.
func SchoolImageKey(name string) string {
	return "schools/" + safeName(name) + ".jpg"
}

// PublicURL joins base and a path-escaped key.
func PublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
