package application

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"penalty-console/internal/application/form"
	"penalty-console/internal/application/store"
	"penalty-console/internal/domain"
)

type WizardStep string

const (
	StepDetainee WizardStep = "detainee"
	StepMedical  WizardStep = "medical"
	StepLegal    WizardStep = "legal"
	StepEvidence WizardStep = "evidence"
)

var wizardSteps = []WizardStep{StepDetainee, StepMedical, StepLegal, StepEvidence}

var stepFields = map[WizardStep][]string{
	StepDetainee: {"name", "age", "sex", "address"},
	StepMedical:  {"doctor_id", "alcohol_level"},
	StepLegal:    {"dependence_id", "procedure_id", "cause_id", "court_id", "amount", "date", "time", "observations"},
	StepEvidence: {"image"},
}

const timeMask = "99:99"

// WizardSources feed the wizard's lookup fields.
type WizardSources struct {
	Doctors     form.OptionSource
	Dependences form.OptionSource
	Procedures  form.OptionSource
	Causes      form.OptionSource
	Courts      form.OptionSource
}

type WizardState struct {
	Step       WizardStep        `json:"step"`
	Index      int               `json:"index"`
	Steps      []WizardStep      `json:"steps"`
	Draft      domain.Penalty    `json:"draft"`
	Errors     map[string]string `json:"errors"`
	Images     []form.Image      `json:"images"`
	PreloadID  int               `json:"preload_id,omitempty"`
	Submitting bool              `json:"submitting"`
}

// PenaltyWizard walks the operator through a penalty in four steps, validating only the
// current step's fields before moving on and the whole record on submit.
type PenaltyWizard struct {
	mu        sync.Mutex
	penalties *store.Store[domain.Penalty]
	preloads  *store.Store[domain.PenaltyPreload]
	form      *form.Form[domain.Penalty]
	lookups   map[string]*form.Autocomplete
	step      int
	draft     domain.Penalty
	preloadID int
	errors    map[string]string
	images    *form.ImageUploader
	sex       *form.Choice
}

func NewPenaltyWizard(penalties *store.Store[domain.Penalty], preloads *store.Store[domain.PenaltyPreload], v *validator.Validate, sources WizardSources) *PenaltyWizard {
	w := &PenaltyWizard{
		penalties: penalties,
		preloads:  preloads,
		form:      form.New[domain.Penalty](v),
		lookups:   map[string]*form.Autocomplete{},
	}
	for field, src := range map[string]form.OptionSource{
		"doctor_id":     sources.Doctors,
		"dependence_id": sources.Dependences,
		"procedure_id":  sources.Procedures,
		"cause_id":      sources.Causes,
		"court_id":      sources.Courts,
	} {
		if src != nil {
			w.lookups[field] = form.NewAutocomplete(src)
		}
	}
	w.reset()
	return w
}

func (w *PenaltyWizard) reset() {
	w.step = 0
	w.draft = domain.Penalty{Active: true}
	w.preloadID = 0
	w.errors = map[string]string{}
	w.images = form.NewImageUploader(false, 1)
	w.sex = form.NewChoice("M", "F")
}

// Start discards any draft and opens the first step.
func (w *PenaltyWizard) Start() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	return w.state()
}

// StartFromPreload opens the wizard with the detainee data captured at intake.
func (w *PenaltyWizard) StartFromPreload(ctx context.Context, id int) (WizardState, error) {
	if err := w.preloads.FetchAll(ctx); err != nil {
		return w.State(), err
	}
	p, ok := w.preloads.Find(id)
	if !ok {
		return w.State(), domain.ErrNotFound
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	w.preloadID = p.ID
	w.draft.Name = p.Name
	w.draft.Age = p.Age
	w.draft.Address = p.Address
	w.draft.CauseID = p.CauseID
	w.draft.Date = p.Date
	if p.Sex != "" && w.sex.Select(p.Sex) == nil {
		w.draft.Sex = p.Sex
	}
	return w.state(), nil
}

// Update replaces the draft's values. Attached images are kept, the sex must be one of
// the offered choices and the time is masked to HH:MM.
func (w *PenaltyWizard) Update(values domain.Penalty) (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if values.Sex != "" {
		if err := w.sex.Select(values.Sex); err != nil {
			return w.state(), &form.ValidationError{Fields: map[string]string{"sex": "must be one of M F"}}
		}
	}
	values.ID = w.draft.ID
	values.Image = w.draft.Image
	values.ImageFile = nil
	values.Time = form.Mask(timeMask, values.Time)
	w.draft = values
	w.errors = map[string]string{}
	return w.state(), nil
}

// Next validates the current step and advances when it is clean.
func (w *PenaltyWizard) Next() (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := w.stepErrors(wizardSteps[w.step])
	if len(errs) > 0 {
		w.errors = errs
		return w.state(), &form.ValidationError{Fields: errs}
	}
	w.errors = map[string]string{}
	if w.step < len(wizardSteps)-1 {
		w.step++
	}
	return w.state(), nil
}

func (w *PenaltyWizard) Back() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > 0 {
		w.step--
	}
	w.errors = map[string]string{}
	return w.state()
}

func (w *PenaltyWizard) AttachImage(file domain.Attachment) (WizardState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.images.Add(file); err != nil {
		return w.state(), err
	}
	return w.state(), nil
}

func (w *PenaltyWizard) RemoveImage(i int) WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.images.Remove(i)
	return w.state()
}

// Lookup returns the autocomplete bound to a foreign-key field.
func (w *PenaltyWizard) Lookup(field string) (*form.Autocomplete, bool) {
	ac, ok := w.lookups[field]
	return ac, ok
}

// Pick selects value in field's autocomplete and writes it into the draft.
func (w *PenaltyWizard) Pick(field string, value int) (WizardState, error) {
	ac, ok := w.Lookup(field)
	if !ok || !ac.Select(value) {
		return w.State(), domain.ErrInvalidInput
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	switch field {
	case "doctor_id":
		w.draft.DoctorID = value
	case "dependence_id":
		w.draft.DependenceID = value
	case "procedure_id":
		w.draft.ProcedureID = value
	case "cause_id":
		w.draft.CauseID = value
	case "court_id":
		w.draft.CourtID = value
	}
	return w.state(), nil
}

// Submit validates the whole draft and sends it. A failing draft jumps back to the first
// step with an error. On success the wizard starts over.
func (w *PenaltyWizard) Submit(ctx context.Context) (WizardState, error) {
	w.mu.Lock()
	all := w.form.Validate(w.draft)
	if len(all) > 0 {
		for i, step := range wizardSteps {
			if errs := pick(all, stepFields[step]); len(errs) > 0 {
				w.step = i
				w.errors = errs
				break
			}
		}
		st := w.state()
		w.mu.Unlock()
		return st, &form.ValidationError{Fields: all}
	}
	draft := w.draft
	if files := w.images.NewFiles(); len(files) > 0 {
		draft.ImageFile = &files[0]
	} else if urls := w.images.URLs(); len(urls) > 0 {
		draft.Image = urls[0]
	}
	w.mu.Unlock()

	if err := w.form.Submit(ctx, draft, w.penalties.Save); err != nil {
		return w.State(), err
	}
	return w.Start(), nil
}

func (w *PenaltyWizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state()
}

func (w *PenaltyWizard) state() WizardState {
	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return WizardState{
		Step:       wizardSteps[w.step],
		Index:      w.step,
		Steps:      append([]WizardStep(nil), wizardSteps...),
		Draft:      w.draft,
		Errors:     errs,
		Images:     w.images.Images(),
		PreloadID:  w.preloadID,
		Submitting: w.form.Submitting(),
	}
}

func (w *PenaltyWizard) stepErrors(step WizardStep) map[string]string {
	return pick(w.form.Validate(w.draft), stepFields[step])
}

func pick(errs map[string]string, fields []string) map[string]string {
	out := map[string]string{}
	for _, f := range fields {
		if msg, ok := errs[f]; ok {
			out[f] = msg
		}
	}
	return out
}
