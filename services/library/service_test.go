package library_test

import (
	"testing"

	"rockola/models"
	"rockola/services/library"
)

func sampleCatalog() []models.MediaEntry {
	return []models.MediaEntry{
		{ID: 1, Type: models.MediaTypeAudio, Genre: "Cumbia", Artist: "Grupo5", Title: "Cariñito", Filename: "106 - Grupo5 - Cariñito.mp3", Artwork: "/media/audio/Cumbia/folder.jpg"},
		{ID: 2, Type: models.MediaTypeAudio, Genre: "Cumbia", Artist: "Grupo5", Title: "Motor y Motivo", Filename: "107 - Grupo5 - Motor y Motivo.mp3"},
		{ID: 3, Type: models.MediaTypeAudio, Genre: "Salsa", Artist: "Frankie Ruiz", Title: "La Cura", Filename: "01 - Frankie Ruiz - La Cura.mp3"},
		{ID: 4, Type: models.MediaTypeAudio, Genre: models.GenreUnclassified, Artist: models.ArtistUnknown, Title: "loose file", Filename: "loose file.mp3"},
		{ID: 5, Type: models.MediaTypeVideo, Genre: "Rock", Artist: "Queen", Title: "Don't Stop Me Now", Filename: "Queen - Don't Stop Me Now.mp4"},
	}
}

func TestSearchFilters(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	got := svc.Search(models.SearchQuery{Type: models.MediaTypeAudio, Genre: "Cumbia"})
	if len(got) != 2 {
		t.Fatalf("expected 2 cumbia tracks, got %d", len(got))
	}

	got = svc.Search(models.SearchQuery{Text: "cariñito"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("substring search failed: %+v", got)
	}

	// Substring also matches the raw filename.
	got = svc.Search(models.SearchQuery{Text: "107"})
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("filename search failed: %+v", got)
	}

	got = svc.Search(models.SearchQuery{Type: models.MediaTypeAudio, Limit: 2})
	if len(got) != 2 {
		t.Fatalf("limit not honored, got %d results", len(got))
	}
}

func TestGenresExcludeUnclassifiedAndVideo(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	genres := svc.Genres()
	want := []string{"Cumbia", "Salsa"}
	if len(genres) != len(want) {
		t.Fatalf("genres = %v, want %v", genres, want)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Fatalf("genres = %v, want %v", genres, want)
		}
	}
}

func TestArtistsByGenre(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	artists := svc.Artists("Cumbia")
	if len(artists) != 1 {
		t.Fatalf("expected 1 artist, got %+v", artists)
	}
	a := artists[0]
	if a.Name != "Grupo5" || a.TrackCount != 2 {
		t.Fatalf("bad aggregation: %+v", a)
	}
	if a.Artwork != "/media/audio/Cumbia/folder.jpg" {
		t.Fatalf("expected first-seen artwork, got %q", a.Artwork)
	}
}

func TestArtistsSkipsUnknownSentinel(t *testing.T) {
	svc := library.NewService()
	svc.Replace([]models.MediaEntry{
		{ID: 1, Type: models.MediaTypeAudio, Genre: "Cumbia", Artist: models.ArtistUnknown, Title: "loose", Filename: "loose.mp3"},
		{ID: 2, Type: models.MediaTypeAudio, Genre: "Cumbia", Artist: "Grupo5", Title: "Cariñito", Filename: "Cariñito.mp3"},
	})

	artists := svc.Artists("Cumbia")
	if len(artists) != 1 || artists[0].Name != "Grupo5" {
		t.Fatalf("unknown sentinel must not be listed: %+v", artists)
	}
}

func TestArtistsWithoutGenreAggregatesAll(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	artists := svc.Artists("")
	want := []string{"Frankie Ruiz", "Grupo5"}
	if len(artists) != len(want) {
		t.Fatalf("expected %v, got %+v", want, artists)
	}
	for i := range want {
		if artists[i].Name != want[i] {
			t.Fatalf("expected %v, got %+v", want, artists)
		}
	}
}

func TestReplaceSwapsWholeCatalog(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	svc.Replace([]models.MediaEntry{
		{ID: 1, Type: models.MediaTypeAudio, Genre: "Bolero", Artist: "Los Panchos", Title: "Sin Ti", Filename: "Sin Ti.mp3"},
	})

	if n, _ := svc.Count(); n != 1 {
		t.Fatalf("old snapshot leaked, count = %d", n)
	}
	if got := svc.Genres(); len(got) != 1 || got[0] != "Bolero" {
		t.Fatalf("stale genres after swap: %v", got)
	}
	if _, ok := svc.EntryByID(3); ok {
		t.Fatalf("entry from previous snapshot still resolvable")
	}
}

func TestRandomHonorsType(t *testing.T) {
	svc := library.NewService()
	svc.Replace(sampleCatalog())

	for i := 0; i < 20; i++ {
		e, ok := svc.Random(models.MediaTypeVideo)
		if !ok || e.Type != models.MediaTypeVideo {
			t.Fatalf("random pick of wrong type: %+v ok=%v", e, ok)
		}
	}
	if _, ok := svc.Random(models.MediaTypeKaraoke); ok {
		t.Fatalf("random pick from empty source should fail")
	}
}
