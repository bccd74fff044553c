package form

import (
	"context"
	"slices"
	"strings"
	"sync"
	"unicode"

	"penalty-console/internal/domain"
)

type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// OptionsFrom turns loaded records into autocomplete or radio options.
func OptionsFrom[T domain.Entity](items []T, label func(T) string) []Option {
	out := make([]Option, 0, len(items))
	for _, it := range items {
		out = append(out, Option{Value: it.GetID(), Label: label(it)})
	}
	return out
}

type Key string

const (
	KeyUp     Key = "ArrowUp"
	KeyDown   Key = "ArrowDown"
	KeyEnter  Key = "Enter"
	KeyEscape Key = "Escape"
)

type OptionSource func(ctx context.Context) ([]Option, error)

type AutocompleteState struct {
	Query       string   `json:"query"`
	Open        bool     `json:"open"`
	Matches     []Option `json:"matches"`
	Highlighted int      `json:"highlighted"`
	Selected    *Option  `json:"selected,omitempty"`
}

// Autocomplete filters a remotely loaded option list as the operator types and supports
// keyboard navigation over the matches.
type Autocomplete struct {
	mu     sync.Mutex
	source OptionSource
	all    []Option
	state  AutocompleteState
}

func NewAutocomplete(source OptionSource) *Autocomplete {
	return &Autocomplete{source: source, state: AutocompleteState{Highlighted: -1, Matches: []Option{}}}
}

func (a *Autocomplete) Load(ctx context.Context) error {
	opts, err := a.source(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.all = opts
	a.refilter()
	return nil
}

func (a *Autocomplete) Type(query string) AutocompleteState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Query = query
	a.state.Open = true
	a.refilter()
	return a.snapshot()
}

func (a *Autocomplete) refilter() {
	needle := strings.ToLower(strings.TrimSpace(a.state.Query))
	matches := []Option{}
	for _, o := range a.all {
		if needle == "" || strings.Contains(strings.ToLower(o.Label), needle) {
			matches = append(matches, o)
		}
	}
	a.state.Matches = matches
	if len(matches) == 0 {
		a.state.Highlighted = -1
	} else {
		a.state.Highlighted = 0
	}
}

func (a *Autocomplete) Key(k Key) AutocompleteState {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.state.Matches)
	switch k {
	case KeyDown:
		if !a.state.Open {
			a.state.Open = true
			break
		}
		if n > 0 {
			a.state.Highlighted = min(a.state.Highlighted+1, n-1)
		}
	case KeyUp:
		if n > 0 {
			a.state.Highlighted = max(a.state.Highlighted-1, 0)
		}
	case KeyEnter:
		if a.state.Open && a.state.Highlighted >= 0 && a.state.Highlighted < n {
			chosen := a.state.Matches[a.state.Highlighted]
			a.state.Selected = &chosen
			a.state.Query = chosen.Label
			a.state.Open = false
		}
	case KeyEscape:
		a.state.Open = false
	}
	return a.snapshot()
}

// Select preselects the option with value, as when editing an existing record.
func (a *Autocomplete) Select(value int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, o := range a.all {
		if o.Value == value {
			chosen := o
			a.state.Selected = &chosen
			a.state.Query = o.Label
			a.state.Open = false
			return true
		}
	}
	return false
}

func (a *Autocomplete) Selected() (Option, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Selected == nil {
		return Option{}, false
	}
	return *a.state.Selected, true
}

func (a *Autocomplete) State() AutocompleteState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Autocomplete) snapshot() AutocompleteState {
	out := a.state
	out.Matches = slices.Clone(a.state.Matches)
	if a.state.Selected != nil {
		sel := *a.state.Selected
		out.Selected = &sel
	}
	return out
}

// Image is either already stored on the server (URL) or newly selected (File).
type Image struct {
	URL  string             `json:"url,omitempty"`
	File *domain.Attachment `json:"file,omitempty"`
}

func (i Image) Persisted() bool { return i.File == nil && i.URL != "" }

type ImageUploader struct {
	multiple bool
	max      int
	images   []Image
}

func NewImageUploader(multiple bool, max int) *ImageUploader {
	if !multiple || max <= 0 {
		max = 1
	}
	return &ImageUploader{multiple: multiple, max: max}
}

// Load seeds the uploader with images the record already has.
func (u *ImageUploader) Load(urls ...string) {
	u.images = u.images[:0]
	for _, url := range urls {
		if url != "" {
			u.images = append(u.images, Image{URL: url})
		}
	}
}

// Add appends newly selected files. A single-image uploader replaces its current value.
func (u *ImageUploader) Add(files ...domain.Attachment) error {
	for _, f := range files {
		if !strings.HasPrefix(f.ContentType, "image/") {
			return domain.ErrInvalidInput
		}
	}
	if !u.multiple {
		if len(files) > 1 {
			return domain.ErrTooManyFiles
		}
		if len(files) == 1 {
			file := files[0]
			u.images = []Image{{File: &file}}
		}
		return nil
	}
	if len(u.images)+len(files) > u.max {
		return domain.ErrTooManyFiles
	}
	for _, f := range files {
		file := f
		u.images = append(u.images, Image{File: &file})
	}
	return nil
}

func (u *ImageUploader) Remove(i int) {
	if i < 0 || i >= len(u.images) {
		return
	}
	u.images = slices.Delete(u.images, i, i+1)
}

func (u *ImageUploader) Images() []Image { return slices.Clone(u.images) }

func (u *ImageUploader) NewFiles() []domain.Attachment {
	var out []domain.Attachment
	for _, img := range u.images {
		if img.File != nil {
			out = append(out, *img.File)
		}
	}
	return out
}

func (u *ImageUploader) URLs() []string {
	var out []string
	for _, img := range u.images {
		if img.Persisted() {
			out = append(out, img.URL)
		}
	}
	return out
}

var DefaultPalette = []string{
	"#EF4444", "#F97316", "#F59E0B", "#10B981",
	"#06B6D4", "#3B82F6", "#6366F1", "#8B5CF6",
	"#EC4899", "#6B7280",
}

type ColorPicker struct {
	palette  []string
	selected string
}

func NewColorPicker(palette []string) *ColorPicker {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &ColorPicker{palette: slices.Clone(palette)}
}

// Select picks color from the palette, comparing case-insensitively and storing the
// palette's spelling.
func (c *ColorPicker) Select(color string) error {
	for _, p := range c.palette {
		if strings.EqualFold(p, color) {
			c.selected = p
			return nil
		}
	}
	return domain.ErrNotInPalette
}

func (c *ColorPicker) Selected() string { return c.selected }

func (c *ColorPicker) Palette() []string { return slices.Clone(c.palette) }

// Mask formats input against pattern: 9 takes a digit, A a letter, * a letter or digit;
// any other pattern rune is a literal inserted as typed. Input runes that do not fit the
// next placeholder are skipped.
func Mask(pattern, input string) string {
	var b strings.Builder
	in := []rune(input)
	pos := 0
	for _, p := range pattern {
		if pos >= len(in) {
			break
		}
		accept := placeholder(p)
		if accept == nil {
			b.WriteRune(p)
			if in[pos] == p {
				pos++
			}
			continue
		}
		for pos < len(in) && !accept(in[pos]) {
			pos++
		}
		if pos >= len(in) {
			break
		}
		b.WriteRune(in[pos])
		pos++
	}
	return b.String()
}

func placeholder(p rune) func(rune) bool {
	switch p {
	case '9':
		return unicode.IsDigit
	case 'A':
		return unicode.IsLetter
	case '*':
		return func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	default:
		return nil
	}
}

// Choice is a radio group: exactly one of a fixed set of string values.
type Choice struct {
	options  []string
	selected string
}

func NewChoice(options ...string) *Choice {
	return &Choice{options: options}
}

func (c *Choice) Select(value string) error {
	if !slices.Contains(c.options, value) {
		return domain.ErrInvalidInput
	}
	c.selected = value
	return nil
}

func (c *Choice) Selected() string { return c.selected }

// Switch is an on/off toggle bound to a boolean field.
type Switch struct {
	on bool
}

func NewSwitch(on bool) *Switch {
	return &Switch{on: on}
}

func (s *Switch) Toggle() bool {
	s.on = !s.on
	return s.on
}

func (s *Switch) On() bool { return s.on }
