package dependency

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lucas-albers-lz4/kubedeps/pkg/fetcher"
	"github.com/lucas-albers-lz4/kubedeps/pkg/image"
	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
	"github.com/lucas-albers-lz4/kubedeps/pkg/manifest"
)

// DefaultConcurrency is the number of files resolved in parallel.
const DefaultConcurrency = 4

// DigestResolver recovers the tag a digest was published under.
type DigestResolver interface {
	ResolveTagForDigest(ctx context.Context, registry, img, digest string) (string, bool, error)
}

// Parser extracts dependencies from manifest files.
type Parser struct {
	resolver    DigestResolver
	concurrency int
}

// NewParser returns a Parser. With a nil resolver, references pinned only by
// digest are dropped. A non-positive concurrency means DefaultConcurrency.
func NewParser(resolver DigestResolver, concurrency int) *Parser {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Parser{resolver: resolver, concurrency: concurrency}
}

// Parse returns the dependencies referenced by files, in first-seen order.
//
// Every file is decoded before any registry is contacted. If any file fails
// to decode, the pass fails with a *FileNotParseableError for the first one.
func (p *Parser) Parse(ctx context.Context, files []fetcher.File) ([]Dependency, error) {
	if len(files) == 0 {
		return nil, ErrFileNotFound
	}

	images := make([][]string, len(files))
	var firstErr error
	for i, file := range files {
		found, err := manifest.Images(file.Content)
		if err != nil {
			log.Warn("Failed to decode manifest", "file", file.Path(), "error", err)
			if firstErr == nil {
				firstErr = WrapFileNotParseable(file.Path(), err)
			}
			continue
		}
		images[i] = found
	}
	if firstErr != nil {
		return nil, firstErr
	}

	results := make([][]Dependency, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			deps, err := p.parseFile(gctx, file, images[i])
			if err != nil {
				return err
			}
			results[i] = deps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := NewSet()
	for _, deps := range results {
		for _, dep := range deps {
			set.Add(dep)
		}
	}
	log.Debug("Parsed dependencies", "files", len(files), "dependencies", set.Len())
	return set.Dependencies(), nil
}

func (p *Parser) parseFile(ctx context.Context, file fetcher.File, imageStrings []string) ([]Dependency, error) {
	var deps []Dependency
	for _, raw := range imageStrings {
		ref, ok := image.Parse(raw)
		if !ok {
			continue
		}

		version, err := p.versionFor(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", file.Name, err)
		}
		if version == "" {
			log.Debug("Dropping image reference without a resolvable version", "file", file.Name, "image", raw)
			continue
		}
		deps = append(deps, BuildDependency(file.Name, ref, version))
	}
	return deps, nil
}

// versionFor returns the tag of ref, or the tag its digest resolves to.
func (p *Parser) versionFor(ctx context.Context, ref *image.Reference) (string, error) {
	if ref.Tag != "" {
		return ref.Tag, nil
	}
	if ref.Digest == "" || p.resolver == nil {
		return "", nil
	}

	tag, found, err := p.resolver.ResolveTagForDigest(ctx, ref.Registry, ref.Image, ref.Digest)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return tag, nil
}
