package asset

import (
	"context"
	"fmt"

	"github.com/af-corp/media-delivery/internal/config"
)

// Manifest is the YAML document read by LoadManifest.
type Manifest struct {
	Assets []Asset `yaml:"assets"`
}

// StaticSource serves assets from memory. It backs local development, where
// the catalogue comes from a YAML manifest, and tests.
type StaticSource struct {
	byID  map[string]*Asset
	byURL map[string]*Asset
}

func NewStaticSource(assets ...Asset) *StaticSource {
	s := &StaticSource{
		byID:  make(map[string]*Asset, len(assets)),
		byURL: make(map[string]*Asset, len(assets)),
	}
	for i := range assets {
		a := assets[i]
		a.normalize()
		if a.ID != "" {
			s.byID[a.ID] = &a
		}
		if a.URL != "" {
			s.byURL[a.URL] = &a
		}
	}
	return s
}

// LoadManifest reads a YAML asset manifest. ${VAR} references are expanded.
func LoadManifest(path string) (*StaticSource, error) {
	var m Manifest
	if err := config.LoadFile(path, &m); err != nil {
		return nil, fmt.Errorf("load asset manifest: %w", err)
	}
	return NewStaticSource(m.Assets...), nil
}

func (s *StaticSource) FindByURL(_ context.Context, url string) (*Asset, error) {
	return s.copyOf(s.byURL[url]), nil
}

func (s *StaticSource) FindByID(_ context.Context, id string) (*Asset, error) {
	return s.copyOf(s.byID[id]), nil
}

func (s *StaticSource) copyOf(a *Asset) *Asset {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Len returns the number of assets indexed by ID.
func (s *StaticSource) Len() int {
	return len(s.byID)
}
