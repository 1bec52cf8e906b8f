// Package favorites keeps a visitor's bookmarked applications grouped into
// named categories.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

var (
	ErrDefaultCategory  = errors.New("favorites: the default category cannot be deleted or renamed")
	ErrCategoryNotFound = errors.New("favorites: category not found")
	ErrCategoryExists   = errors.New("favorites: category already exists")
	ErrInvalidName      = errors.New("favorites: invalid category name")
	ErrInvalidKey       = errors.New("favorites: invalid record key")
)

// DeleteMode decides what happens to the members of a deleted category.
type DeleteMode int

const (
	// DropItems unfavorites every member.
	DropItems DeleteMode = iota
	// KeepItems moves every member to the default category.
	KeepItems
)

// Store is the favorites collection of one visitor.
// A key belongs to at most one category. Every mutation is persisted.
type Store struct {
	kv         localstate.KV
	log        logger.Logger
	categories []*Category
	owner      map[string]*Category // record key -> category
}

// Load reads the visitor's favorites, migrating legacy data. Unreadable or
// malformed data resets the store to an empty default category.
func Load(ctx context.Context, kv localstate.KV, log logger.Logger) *Store {
	s := &Store{kv: kv, log: log}

	raw, err := kv.Get(ctx, localstate.KeyFavorites)
	if err != nil && !errors.Is(err, localstate.ErrNotFound) {
		log.Warn("failed to read favorites, starting empty", logger.Error(err))
		s.reset(emptyDocument())
		return s
	}

	doc, version, err := Migrate(raw)
	if err != nil {
		log.Warn("malformed favorites, starting empty", logger.Error(err))
		s.reset(emptyDocument())
		return s
	}

	s.reset(doc)

	if raw != "" && version != CurrentVersion {
		log.Info("migrated favorites",
			logger.Int("from_version", version),
			logger.Int("to_version", CurrentVersion))
		if err := s.save(ctx); err != nil {
			log.Warn("failed to persist migrated favorites", logger.Error(err))
		}
	}

	return s
}

func (s *Store) reset(doc Document) {
	s.categories = make([]*Category, 0, len(doc.Categories))
	s.owner = make(map[string]*Category)
	for i := range doc.Categories {
		c := &Category{Name: doc.Categories[i].Name, Keys: append([]string(nil), doc.Categories[i].Keys...)}
		s.categories = append(s.categories, c)
		for _, k := range c.Keys {
			s.owner[k] = c
		}
	}
}

// IsFavorite reports whether key is in any category.
func (s *Store) IsFavorite(key string) bool {
	_, ok := s.owner[key]
	return ok
}

// CategoryOf returns the category holding key.
func (s *Store) CategoryOf(key string) (string, bool) {
	c, ok := s.owner[key]
	if !ok {
		return "", false
	}
	return c.Name, true
}

// TotalCount returns the number of favorited keys across categories.
func (s *Store) TotalCount() int {
	return len(s.owner)
}

// Categories returns the category names, default first.
func (s *Store) Categories() []string {
	names := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		names = append(names, c.Name)
	}
	return names
}

// HasCategory reports whether name exists.
func (s *Store) HasCategory(name string) bool {
	return s.find(name) != nil
}

// Keys returns the keys of a category in insertion order. An empty name
// returns every favorited key, category by category.
func (s *Store) Keys(name string) []string {
	if name == "" {
		out := make([]string, 0, len(s.owner))
		for _, c := range s.categories {
			out = append(out, c.Keys...)
		}
		return out
	}
	c := s.find(name)
	if c == nil {
		return nil
	}
	return append([]string(nil), c.Keys...)
}

// Document returns a snapshot of the collection.
func (s *Store) Document() Document {
	doc := Document{Version: CurrentVersion, Categories: make([]Category, 0, len(s.categories))}
	for _, c := range s.categories {
		doc.Categories = append(doc.Categories, Category{Name: c.Name, Keys: append([]string{}, c.Keys...)})
	}
	return doc
}

// AddToCategory moves key into category, creating the category if needed.
// An empty category means the default one.
func (s *Store) AddToCategory(ctx context.Context, key, category string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidKey
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}

	s.detach(key)

	c := s.find(category)
	if c == nil {
		c = &Category{Name: category, Keys: []string{}}
		s.categories = append(s.categories, c)
	}
	c.Keys = append(c.Keys, key)
	s.owner[key] = c

	return s.save(ctx)
}

// Remove unfavorites key. Removing an unknown key is a no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if !s.detach(key) {
		return nil
	}
	return s.save(ctx)
}

// DeleteCategory removes a category. Its members are dropped or moved to the
// default category depending on mode.
func (s *Store) DeleteCategory(ctx context.Context, name string, mode DeleteMode) error {
	if name == DefaultCategory {
		return ErrDefaultCategory
	}
	idx := s.indexOf(name)
	if idx < 0 {
		return ErrCategoryNotFound
	}

	c := s.categories[idx]
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)

	def := s.find(DefaultCategory)
	for _, k := range c.Keys {
		if mode == KeepItems {
			def.Keys = append(def.Keys, k)
			s.owner[k] = def
			continue
		}
		delete(s.owner, k)
	}

	return s.save(ctx)
}

// RenameCategory renames a non-default category, keeping its position.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	switch {
	case oldName == DefaultCategory:
		return ErrDefaultCategory
	case newName == "":
		return ErrInvalidName
	case s.find(newName) != nil:
		return ErrCategoryExists
	}

	c := s.find(oldName)
	if c == nil {
		return ErrCategoryNotFound
	}
	c.Name = newName

	return s.save(ctx)
}

// detach removes key from its category. Reports whether it was present.
func (s *Store) detach(key string) bool {
	c, ok := s.owner[key]
	if !ok {
		return false
	}
	for i, k := range c.Keys {
		if k == key {
			c.Keys = append(c.Keys[:i], c.Keys[i+1:]...)
			break
		}
	}
	delete(s.owner, key)
	return true
}

func (s *Store) find(name string) *Category {
	if i := s.indexOf(name); i >= 0 {
		return s.categories[i]
	}
	return nil
}

func (s *Store) indexOf(name string) int {
	for i, c := range s.categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// save prunes empty non-default categories and writes the whole document.
func (s *Store) save(ctx context.Context) error {
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.Name == DefaultCategory || len(c.Keys) > 0 {
			kept = append(kept, c)
		}
	}
	s.categories = kept

	data, err := json.Marshal(s.Document())
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := s.kv.Set(ctx, localstate.KeyFavorites, string(data)); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}
