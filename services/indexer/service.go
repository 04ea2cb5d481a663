// Package indexer scans the configured media roots and produces catalog
// entries. A scan is best-effort: unreadable files and failed duration
// probes are logged and skipped, never fatal.
package indexer

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"rockola/config"
	"rockola/models"
)

var (
	indexPrefixRe = regexp.MustCompile(`^\d+\s*-\s*`)
	folderArtRe   = regexp.MustCompile(`(?i)^folder\.(jpg|jpeg|png|webp)$`)
)

var (
	audioExts = map[string]bool{".mp3": true, ".wav": true, ".flac": true, ".ogg": true, ".m4a": true, ".wma": true}
	videoExts = map[string]bool{".mp4": true, ".avi": true, ".mkv": true, ".webm": true, ".mov": true}
)

// Root is one directory tree to index under a fixed media type.
type Root struct {
	Path string
	Type models.MediaType
}

// RootsFromSettings maps the configured library paths to scan roots,
// skipping empty ones.
func RootsFromSettings(cfg config.Settings) []Root {
	roots := []Root{}
	if cfg.AudioPath != "" {
		roots = append(roots, Root{Path: cfg.AudioPath, Type: models.MediaTypeAudio})
	}
	if cfg.VideoPath != "" {
		roots = append(roots, Root{Path: cfg.VideoPath, Type: models.MediaTypeVideo})
	}
	if cfg.KaraokePath != "" {
		roots = append(roots, Root{Path: cfg.KaraokePath, Type: models.MediaTypeKaraoke})
	}
	return roots
}

// Service walks media roots and builds catalog entries.
type Service struct {
	fs           afero.Fs
	probeWorkers int
}

func NewService(fsys afero.Fs) *Service {
	return &Service{fs: fsys, probeWorkers: 4}
}

// Scan walks every root and returns the combined entries with ids assigned
// sequentially from 1 in walk order.
func (s *Service) Scan(ctx context.Context, roots []Root) ([]models.MediaEntry, error) {
	entries := []models.MediaEntry{}
	artCache := map[string]string{}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := s.scanRoot(root, artCache)
		if err != nil {
			log.Printf("[indexer] skipping root %s: %v", root.Path, err)
			continue
		}
		log.Printf("[indexer] %s: %d entries under %s", root.Type, len(found), root.Path)
		entries = append(entries, found...)
	}

	for i := range entries {
		entries[i].ID = i + 1
	}

	s.probeDurations(ctx, entries)
	return entries, nil
}

func (s *Service) scanRoot(root Root, artCache map[string]string) ([]models.MediaEntry, error) {
	if _, err := s.fs.Stat(root.Path); err != nil {
		return nil, err
	}

	entries := []models.MediaEntry{}
	walkErr := afero.Walk(s.fs, root.Path, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			log.Printf("[indexer] walk error at %s: %v", path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !extMatches(root.Type, filepath.Ext(info.Name())) {
			return nil
		}

		artist, title := ParseFilename(info.Name())
		entries = append(entries, models.MediaEntry{
			Type:      root.Type,
			Genre:     genreFor(root.Path, path),
			Artist:    artist,
			Title:     title,
			Filename:  info.Name(),
			Path:      path,
			Extension: strings.ToLower(filepath.Ext(info.Name())),
			Size:      info.Size(),
			Artwork:   s.folderArtwork(root.Path, filepath.Dir(path), artCache),
		})
		return nil
	})
	return entries, walkErr
}

func extMatches(t models.MediaType, ext string) bool {
	ext = strings.ToLower(ext)
	switch t {
	case models.MediaTypeAudio:
		return audioExts[ext]
	case models.MediaTypeVideo:
		return videoExts[ext]
	case models.MediaTypeKaraoke:
		return videoExts[ext] || ext == ".cdg"
	}
	return false
}

// genreFor derives the genre from the first directory under the root.
// Files sitting directly in the root get the unclassified sentinel.
func genreFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return models.GenreUnclassified
	}
	rel = filepath.ToSlash(rel)
	if i := strings.Index(rel, "/"); i > 0 {
		return rel[:i]
	}
	return models.GenreUnclassified
}

// ParseFilename splits "106 - Grupo5 - Cariñito.mp3" into artist "Grupo5"
// and title "Cariñito". Without an "Artist - Title" separator the whole
// cleaned name becomes the title.
func ParseFilename(name string) (artist, title string) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	clean := indexPrefixRe.ReplaceAllString(base, "")

	parts := strings.SplitN(clean, " - ", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return models.ArtistUnknown, strings.TrimSpace(clean)
}

// folderArtwork finds a folder.(jpg|jpeg|png|webp) file in dir or any parent
// up to the root. Lookups are cached per directory for the scan.
func (s *Service) folderArtwork(root, dir string, cache map[string]string) string {
	for {
		art, ok := cache[dir]
		if !ok {
			art = s.artworkInDir(dir)
			cache[dir] = art
		}
		if art != "" {
			return art
		}
		if dir == root || dir == filepath.Dir(dir) {
			return ""
		}
		dir = filepath.Dir(dir)
	}
}

func (s *Service) artworkInDir(dir string) string {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return ""
	}
	for _, info := range infos {
		if !info.IsDir() && folderArtRe.MatchString(info.Name()) {
			return filepath.Join(dir, info.Name())
		}
	}
	return ""
}

// probeDurations fills in audio durations on a bounded worker pool. Probe
// failures leave the duration at 0.
func (s *Service) probeDurations(ctx context.Context, entries []models.MediaEntry) {
	p := pool.New().WithMaxGoroutines(s.probeWorkers)
	for i := range entries {
		if entries[i].Type != models.MediaTypeAudio {
			continue
		}
		i := i
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			if d, ok := s.probeDuration(entries[i].Path); ok {
				entries[i].Duration = d
			}
		})
	}
	p.Wait()
}
