// Package site loads the storefront layout: the product cards and, per page,
// which modals the page carries.
package site

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrCardNotFound = errors.New("site: card not found")
	ErrPageNotFound = errors.New("site: page not found")
)

// CategoryAll selects every card.
const CategoryAll = "all"

// Card is a product card. Prices are kept as the raw attribute text the page
// carries; the purchase modal parses them.
type Card struct {
	ID           string `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	Category     string `yaml:"category" json:"category"`
	Price        string `yaml:"price" json:"price"`
	ProjectPrice string `yaml:"project_price,omitempty" json:"project_price,omitempty"`
}

// Page describes one page layout.
type Page struct {
	Name             string `yaml:"name" json:"name"`
	PurchaseModal    bool   `yaml:"purchase_modal" json:"purchase_modal"`
	AppointmentModal bool   `yaml:"appointment_modal" json:"appointment_modal"`
	// AppointmentCountryCode is false when the appointment form has no
	// country-code field.
	AppointmentCountryCode bool `yaml:"appointment_country_code" json:"appointment_country_code"`
}

// Site is the loaded layout.
type Site struct {
	Cards []Card `yaml:"cards"`
	Pages []Page `yaml:"pages"`

	cards map[string]Card
	pages map[string]Page
}

// Load reads a site file.
func Load(path string) (*Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("site: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a site document and indexes it.
func Parse(r io.Reader) (*Site, error) {
	var s Site
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("site: decode: %w", err)
	}
	if err := s.index(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Site) index() error {
	s.cards = make(map[string]Card, len(s.Cards))
	for i, c := range s.Cards {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return fmt.Errorf("site: card %d has no id", i)
		}
		if _, dup := s.cards[c.ID]; dup {
			return fmt.Errorf("site: duplicate card id %q", c.ID)
		}
		s.Cards[i] = c
		s.cards[c.ID] = c
	}
	s.pages = make(map[string]Page, len(s.Pages))
	for i, p := range s.Pages {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return fmt.Errorf("site: page %d has no name", i)
		}
		if _, dup := s.pages[p.Name]; dup {
			return fmt.Errorf("site: duplicate page %q", p.Name)
		}
		s.Pages[i] = p
		s.pages[p.Name] = p
	}
	return nil
}

// Card looks up a card by id.
func (s *Site) Card(id string) (Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return c, nil
}

// Page looks up a page layout by name.
func (s *Site) Page(name string) (Page, error) {
	p, ok := s.pages[name]
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, name)
	}
	return p, nil
}

// List returns the cards of a category in file order. An empty category or
// CategoryAll lists every card.
func (s *Site) List(category string) []Card {
	category = strings.TrimSpace(category)
	out := make([]Card, 0, len(s.Cards))
	for _, c := range s.Cards {
		if category == "" || category == CategoryAll || c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// Categories returns the distinct card categories, sorted.
func (s *Site) Categories() []string {
	seen := make(map[string]struct{})
	for _, c := range s.Cards {
		seen[c.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
