package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/enrich"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
	"github.com/palemoky/philosophy-catalog-api/internal/storage"
)

// BuildResolvers wires the enrichment sources from configuration. The image
// resolvers mirror into S3 only when storage is enabled; everything else sees
// the same ImageResolver interface either way.
func BuildResolvers(ctx context.Context, cfg *config.Config, catalog *loader.Catalog) (Resolvers, error) {
	ec := cfg.Enrichment
	fetcher := enrich.NewFetcher(ec)
	avatars := enrich.NewAvatarGenerator(ec.AvatarURL)

	policy, err := enrich.NewFillPolicy(ec.FillPolicy, avatars)
	if err != nil {
		return Resolvers{}, err
	}

	wiki := enrich.NewWikipedia(fetcher, ec.WikipediaHosts)
	personAliases := enrich.NewAliasTable(catalog.PersonAliases())
	schoolAliases := enrich.NewAliasTable(catalog.SchoolAliases)
	var people enrich.ImageResolver = enrich.NewDirectResolver(wiki, personAliases, avatars.Person)
	var schools enrich.ImageResolver = enrich.NewDirectResolver(wiki, schoolAliases, avatars.School)

	if cfg.Storage.S3Enabled {
		objects, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return Resolvers{}, fmt.Errorf("failed to configure image storage: %w", err)
		}
		people = enrich.NewMirrorResolver(people, objects, fetcher, storage.PortraitKey)
		schools = enrich.NewMirrorResolver(schools, objects, fetcher, storage.SchoolImageKey)
	}

	logger.Debug("Enrichment resolvers ready",
		zap.Strings("wikipedia_hosts", ec.WikipediaHosts),
		zap.Bool("s3_mirror", cfg.Storage.S3Enabled),
		zap.Int("person_aliases", personAliases.Len()),
		zap.Int("school_aliases", schoolAliases.Len()),
		zap.String("fill_policy", string(policy.Mode())),
	)

	return Resolvers{
		Images:       people,
		SchoolImages: schools,
		Biographies:  enrich.NewBiographyResolver(fetcher, catalog, ec.MaxParagraphs, ec.MaxChars),
		Works:        enrich.NewWorkResolver(enrich.NewLibriVox(fetcher, ec.LibriVoxURL), catalog),
		Quotes:       enrich.NewQuoteResolver(catalog, ec.PlaceholderQuotes),
		Policy:       policy,
	}, nil
}

// NewPhilosophersAPI wires the philosophers API client from configuration.
func NewPhilosophersAPI(cfg *config.Config) *enrich.PhilosophersAPI {
	return enrich.NewPhilosophersAPI(enrich.NewFetcher(cfg.Enrichment), cfg.Enrichment.PhilosophersURL)
}
