package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"penalty-console/internal/domain"
)

func TestForm_ErrorsHiddenUntilBlur(t *testing.T) {
	f := New[domain.Doctor](nil)
	f.Reset(domain.Doctor{})

	f.Focus("name")
	assert.Empty(t, f.VisibleErrors())
	assert.Equal(t, Focused, f.Snapshot().Fields["name"])

	visible := f.Blur("name", domain.Doctor{})
	assert.Equal(t, map[string]string{"name": "is required"}, visible)
	assert.NotContains(t, visible, "certificate", "untouched field stays quiet")
}

func TestForm_FocusAfterBlurKeepsTouched(t *testing.T) {
	f := New[domain.Doctor](nil)
	f.Blur("name", domain.Doctor{})
	f.Focus("name")
	assert.Contains(t, f.VisibleErrors(), "name")
}

func TestForm_SubmitBlockedByValidation(t *testing.T) {
	f := New[domain.Doctor](nil)
	called := false

	err := f.Submit(context.Background(), domain.Doctor{Name: "Juan", Certificate: "12a"}, func(context.Context, domain.Doctor) error {
		called = true
		return nil
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, map[string]string{"certificate": "must contain only digits"}, verr.Fields)
	assert.False(t, called)
	assert.Equal(t, verr.Fields, f.VisibleErrors(), "submit touches every failing field")
	assert.False(t, f.Submitting())
}

func TestForm_SubmittingUntilHandlerSettles(t *testing.T) {
	f := New[domain.Doctor](nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	valid := domain.Doctor{Name: "Juan Pérez", Certificate: "12345"}

	go func() {
		done <- f.Submit(context.Background(), valid, func(context.Context, domain.Doctor) error {
			close(entered)
			<-release
			return errors.New("Duplicado")
		})
	}()
	<-entered

	assert.True(t, f.Submitting())
	assert.ErrorIs(t, f.Submit(context.Background(), valid, func(context.Context, domain.Doctor) error { return nil }), domain.ErrSubmitInFlight)

	close(release)
	assert.EqualError(t, <-done, "Duplicado")
	assert.False(t, f.Submitting())
	assert.Equal(t, valid, f.Snapshot().Values)
}

func TestForm_JSONFieldNames(t *testing.T) {
	f := New[domain.Penalty](nil)
	errs := f.Validate(domain.Penalty{Name: "X", Age: 30, Sex: "M", DoctorID: 1, DependenceID: 1, ProcedureID: 1, CauseID: 1, Date: "2024-13-01", Time: "10:30"})
	assert.Equal(t, map[string]string{"date": "must match 2006-01-02"}, errs)
}

func TestAutocomplete_KeyboardNavigation(t *testing.T) {
	ac := NewAutocomplete(func(context.Context) ([]Option, error) {
		return []Option{{1, "Dra. Ana Ruiz"}, {2, "Dr. Juan Pérez"}, {3, "Dr. Juan Soto"}}, nil
	})
	require.NoError(t, ac.Load(context.Background()))

	st := ac.Type("juan")
	assert.True(t, st.Open)
	assert.Len(t, st.Matches, 2)
	assert.Equal(t, 0, st.Highlighted)

	st = ac.Key(KeyDown)
	assert.Equal(t, 1, st.Highlighted)
	st = ac.Key(KeyDown)
	assert.Equal(t, 1, st.Highlighted, "stays on last match")
	ac.Key(KeyUp)
	st = ac.Key(KeyUp)
	assert.Equal(t, 0, st.Highlighted)

	st = ac.Key(KeyEnter)
	assert.False(t, st.Open)
	sel, ok := ac.Selected()
	assert.True(t, ok)
	assert.Equal(t, 2, sel.Value)
	assert.Equal(t, "Dr. Juan Pérez", st.Query)
}

func TestAutocomplete_EscapeClosesWithoutSelecting(t *testing.T) {
	ac := NewAutocomplete(func(context.Context) ([]Option, error) { return []Option{{1, "Riña"}}, nil })
	require.NoError(t, ac.Load(context.Background()))

	ac.Type("ri")
	st := ac.Key(KeyEscape)
	assert.False(t, st.Open)
	_, ok := ac.Selected()
	assert.False(t, ok)

	st = ac.Key(KeyEnter)
	_, ok = ac.Selected()
	assert.False(t, ok, "enter on a closed list does nothing")
	assert.False(t, st.Open)
}

func TestAutocomplete_NoMatches(t *testing.T) {
	ac := NewAutocomplete(func(context.Context) ([]Option, error) { return []Option{{1, "Riña"}}, nil })
	require.NoError(t, ac.Load(context.Background()))
	st := ac.Type("zzz")
	assert.Equal(t, -1, st.Highlighted)
	ac.Key(KeyEnter)
	_, ok := ac.Selected()
	assert.False(t, ok)
}

func TestAutocomplete_SelectAndLoadError(t *testing.T) {
	ac := NewAutocomplete(func(context.Context) ([]Option, error) { return []Option{{9, "Juzgado"}}, nil })
	require.NoError(t, ac.Load(context.Background()))
	assert.True(t, ac.Select(9))
	assert.False(t, ac.Select(10))

	failing := NewAutocomplete(func(context.Context) ([]Option, error) { return nil, domain.ErrTransport })
	assert.ErrorIs(t, failing.Load(context.Background()), domain.ErrTransport)
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom([]domain.Court{{ID: 4, Name: "Cívico"}}, func(c domain.Court) string { return c.Name })
	assert.Equal(t, []Option{{Value: 4, Label: "Cívico"}}, opts)
}

func png(name string) domain.Attachment {
	return domain.Attachment{FileName: name, ContentType: "image/png", Data: []byte(name)}
}

func TestImageUploader_SingleReplaces(t *testing.T) {
	u := NewImageUploader(false, 0)
	u.Load("https://cdn/old.png")
	assert.True(t, u.Images()[0].Persisted())

	require.NoError(t, u.Add(png("new.png")))
	imgs := u.Images()
	require.Len(t, imgs, 1)
	assert.False(t, imgs[0].Persisted())
	assert.Empty(t, u.URLs())
	assert.Equal(t, "new.png", u.NewFiles()[0].FileName)

	assert.ErrorIs(t, u.Add(png("a.png"), png("b.png")), domain.ErrTooManyFiles)
}

func TestImageUploader_MultipleRespectsMax(t *testing.T) {
	u := NewImageUploader(true, 3)
	u.Load("https://cdn/1.png")
	require.NoError(t, u.Add(png("2.png"), png("3.png")))
	assert.ErrorIs(t, u.Add(png("4.png")), domain.ErrTooManyFiles)

	u.Remove(0)
	assert.Empty(t, u.URLs())
	assert.Len(t, u.NewFiles(), 2)
	require.NoError(t, u.Add(png("4.png")))
	u.Remove(99)
	assert.Len(t, u.Images(), 3)
}

func TestImageUploader_RejectsNonImages(t *testing.T) {
	u := NewImageUploader(true, 2)
	err := u.Add(domain.Attachment{FileName: "x.pdf", ContentType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestColorPicker(t *testing.T) {
	c := NewColorPicker(nil)
	require.NoError(t, c.Select("#ef4444"))
	assert.Equal(t, "#EF4444", c.Selected())
	assert.ErrorIs(t, c.Select("#123456"), domain.ErrNotInPalette)
	assert.Equal(t, "#EF4444", c.Selected())
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(811) 234-5678", Mask("(999) 999-9999", "8112345678"))
	assert.Equal(t, "(811) 234-5678", Mask("(999) 999-9999", "(811) 234-5678"))
	assert.Equal(t, "(81", Mask("(999) 999-9999", "81"))
	assert.Equal(t, "23:45", Mask("99:99", "2345"))
	assert.Equal(t, "ABC-12", Mask("AAA-99", "ABC12"))
	assert.Empty(t, Mask("99", "xx"))
}

func TestChoice(t *testing.T) {
	c := NewChoice("M", "F")
	require.NoError(t, c.Select("F"))
	assert.Equal(t, "F", c.Selected())
	assert.ErrorIs(t, c.Select("X"), domain.ErrInvalidInput)
	assert.Equal(t, "F", c.Selected())
}

func TestSwitch(t *testing.T) {
	s := NewSwitch(true)
	assert.True(t, s.On())
	assert.False(t, s.Toggle())
	assert.True(t, s.Toggle())
	assert.True(t, s.On())
}
