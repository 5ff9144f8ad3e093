package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glabrego/gaufre-cli/internal/gopher"
	"github.com/glabrego/gaufre-cli/internal/logging"
	"github.com/glabrego/gaufre-cli/internal/session"
	"github.com/glabrego/gaufre-cli/internal/storage"
)

type Fetcher interface {
	Fetch(ctx context.Context, addr gopher.Address) ([]byte, error)
}

type Repository interface {
	SaveBookmark(ctx context.Context, title string, addr gopher.Address) (storage.Bookmark, error)
	ListBookmarks(ctx context.Context) ([]storage.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error
	LoadUIPreferences(ctx context.Context, defaults storage.UIPreferences) (storage.UIPreferences, error)
	SaveUIPreferences(ctx context.Context, prefs storage.UIPreferences) error
}

// BookmarksAddress is the local menu listing saved bookmarks. Port 0 never
// comes out of address parsing, so it cannot clash with a real server.
var BookmarksAddress = gopher.Address{Host: "bookmarks", Port: 0, Type: gopher.Submenu}

var ErrLocalPage = errors.New("cannot bookmark a local page")

// Service loads documents for the navigation engine and owns bookmark and
// preference storage.
type Service struct {
	fetcher Fetcher
	repo    Repository
}

func NewService(fetcher Fetcher, repo Repository) *Service {
	return &Service{fetcher: fetcher, repo: repo}
}

// IsLocal reports whether addr is served from storage instead of the network.
func IsLocal(addr gopher.Address) bool {
	return addr == BookmarksAddress
}

// Load fetches and classifies addr.
func (s *Service) Load(ctx context.Context, addr gopher.Address) (gopher.Document, error) {
	if IsLocal(addr) {
		return s.bookmarksMenu(ctx)
	}
	log := logging.L().With().
		Str("host", addr.Host).
		Int("port", addr.Port).
		Str("selector", addr.Selector).
		Stringer("type", addr.Type).
		Logger()

	start := time.Now()
	log.Debug().Msg("fetch start")
	body, err := s.fetcher.Fetch(ctx, addr)
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("fetch failed")
		return gopher.Document{}, err
	}

	result := gopher.Classify(addr, body)
	for _, skipped := range result.Skipped {
		log.Debug().Str("line", skipped.Line).Str("reason", skipped.Reason).Msg("skipped malformed menu line")
	}
	log.Info().
		Int("bytes", len(body)).
		Stringer("kind", result.Document.Kind).
		Int("items", result.Document.Len()).
		Int("skipped", len(result.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("fetch complete")
	return result.Document, nil
}

func (s *Service) bookmarksMenu(ctx context.Context) (gopher.Document, error) {
	bookmarks, err := s.ListBookmarks(ctx)
	if err != nil {
		return gopher.Document{}, err
	}
	if len(bookmarks) == 0 {
		return gopher.MenuDocument([]gopher.MenuEntry{
			{Type: gopher.Info, Display: "No bookmarks yet. Use mark to add the current page."},
		}), nil
	}
	entries := make([]gopher.MenuEntry, len(bookmarks))
	for i, b := range bookmarks {
		entries[i] = gopher.MenuEntry{Type: b.Address.Type, Display: b.Title, Address: b.Address}
	}
	return gopher.MenuDocument(entries), nil
}

// Mark bookmarks the current location of sess.
func (s *Service) Mark(ctx context.Context, sess session.Session) (storage.Bookmark, error) {
	if IsLocal(sess.Current) {
		return storage.Bookmark{}, ErrLocalPage
	}
	b, err := s.repo.SaveBookmark(ctx, sess.Title(), sess.Current)
	if err != nil {
		return storage.Bookmark{}, fmt.Errorf("save bookmark: %w", err)
	}
	logging.L().Info().Int64("id", b.ID).Str("url", b.Address.URL()).Msg("bookmark saved")
	return b, nil
}

func (s *Service) ListBookmarks(ctx context.Context) ([]storage.Bookmark, error) {
	bookmarks, err := s.repo.ListBookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Unmark deletes the bookmark at position index of the bookmarks menu.
func (s *Service) Unmark(ctx context.Context, index int) (storage.Bookmark, error) {
	bookmarks, err := s.ListBookmarks(ctx)
	if err != nil {
		return storage.Bookmark{}, err
	}
	if index < 0 || index >= len(bookmarks) {
		return storage.Bookmark{}, &session.IndexOutOfRangeError{Index: index, Len: len(bookmarks)}
	}
	b := bookmarks[index]
	if err := s.repo.DeleteBookmark(ctx, b.ID); err != nil {
		return storage.Bookmark{}, fmt.Errorf("delete bookmark: %w", err)
	}
	logging.L().Info().Int64("id", b.ID).Msg("bookmark deleted")
	return b, nil
}

func (s *Service) LoadPreferences(ctx context.Context, defaults storage.UIPreferences) (storage.UIPreferences, error) {
	prefs, err := s.repo.LoadUIPreferences(ctx, defaults)
	if err != nil {
		return defaults, fmt.Errorf("load ui preferences: %w", err)
	}
	return prefs, nil
}

func (s *Service) SavePreferences(ctx context.Context, prefs storage.UIPreferences) error {
	if err := s.repo.SaveUIPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("save ui preferences: %w", err)
	}
	return nil
}
