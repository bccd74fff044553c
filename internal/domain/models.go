package domain

import "time"

// Entity is any record managed through a remote catalog. An ID of 0 marks a record that
// has not been created yet.
type Entity interface {
	GetID() int
}

// Attachment is a file selected in the console that has not been uploaded yet.
type Attachment struct {
	Field       string `json:"-"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Uploadable entities are sent as multipart when they carry new files.
type Uploadable interface {
	Attachments() []Attachment
}

type Doctor struct {
	ID          int    `json:"id"`
	Name        string `json:"name" validate:"required,max=120"`
	Certificate string `json:"certificate" validate:"required,numeric,max=20"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Active      bool   `json:"active"`
}

func (d Doctor) GetID() int { return d.ID }

type Dependence struct {
	ID     int    `json:"id"`
	Name   string `json:"name" validate:"required,max=120"`
	Active bool   `json:"active"`
}

func (d Dependence) GetID() int { return d.ID }

type Procedure struct {
	ID     int    `json:"id"`
	Name   string `json:"name" validate:"required,max=120"`
	Active bool   `json:"active"`
}

func (p Procedure) GetID() int { return p.ID }

type CauseOfDetention struct {
	ID     int    `json:"id"`
	Name   string `json:"name" validate:"required,max=160"`
	Active bool   `json:"active"`
}

func (c CauseOfDetention) GetID() int { return c.ID }

type Court struct {
	ID      int    `json:"id"`
	Name    string `json:"name" validate:"required,max=160"`
	Address string `json:"address" validate:"omitempty,max=200"`
	Active  bool   `json:"active"`
}

func (c Court) GetID() int { return c.ID }

type User struct {
	ID           int      `json:"id"`
	Name         string   `json:"name" validate:"required,max=120"`
	Username     string   `json:"username" validate:"required,alphanum,max=40"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password,omitempty" validate:"omitempty,min=8"`
	DependenceID int      `json:"dependence_id" validate:"gte=0"`
	Permissions  []string `json:"permissions"`
	Active       bool     `json:"active"`
}

func (u User) GetID() int { return u.ID }

type TechnicalRecord struct {
	ID           int         `json:"id"`
	Folio        string      `json:"folio" validate:"required,max=40"`
	Name         string      `json:"name" validate:"required,max=120"`
	Age          int         `json:"age" validate:"gte=0,lte=120"`
	Sex          string      `json:"sex" validate:"omitempty,oneof=M F"`
	Address      string      `json:"address" validate:"omitempty,max=200"`
	DoctorID     int         `json:"doctor_id" validate:"required,gt=0"`
	Observations string      `json:"observations" validate:"omitempty,max=1000"`
	Image        string      `json:"image"`
	ImageFile    *Attachment `json:"-"`
	Active       bool        `json:"active"`
}

func (t TechnicalRecord) GetID() int { return t.ID }

func (t TechnicalRecord) Attachments() []Attachment {
	if t.ImageFile == nil {
		return nil
	}
	file := *t.ImageFile
	file.Field = "image"
	return []Attachment{file}
}

type Penalty struct {
	ID           int         `json:"id"`
	Name         string      `json:"name" validate:"required,max=120"`
	Age          int         `json:"age" validate:"required,gte=12,lte=120"`
	Sex          string      `json:"sex" validate:"required,oneof=M F"`
	Address      string      `json:"address" validate:"omitempty,max=200"`
	DoctorID     int         `json:"doctor_id" validate:"required,gt=0"`
	AlcoholLevel string      `json:"alcohol_level" validate:"omitempty,max=20"`
	DependenceID int         `json:"dependence_id" validate:"required,gt=0"`
	ProcedureID  int         `json:"procedure_id" validate:"required,gt=0"`
	CauseID      int         `json:"cause_id" validate:"required,gt=0"`
	CourtID      int         `json:"court_id" validate:"gte=0"`
	Amount       float64     `json:"amount" validate:"gte=0"`
	Date         string      `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string      `json:"time" validate:"required,datetime=15:04"`
	Observations string      `json:"observations" validate:"omitempty,max=1000"`
	Image        string      `json:"image"`
	ImageFile    *Attachment `json:"-"`
	Active       bool        `json:"active"`
}

func (p Penalty) GetID() int { return p.ID }

func (p Penalty) Attachments() []Attachment {
	if p.ImageFile == nil {
		return nil
	}
	file := *p.ImageFile
	file.Field = "image"
	return []Attachment{file}
}

// PenaltyPreload is a draft captured in the field before the full registration.
type PenaltyPreload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Sex     string `json:"sex"`
	Address string `json:"address"`
	CauseID int    `json:"cause_id"`
	Date    string `json:"date"`
}

func (p PenaltyPreload) GetID() int { return p.ID }

type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Done        bool   `json:"done"`
}

func (t Task) GetID() int { return t.ID }

type LogEntry struct {
	ID          int       `json:"id"`
	UserName    string    `json:"user_name"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l LogEntry) GetID() int { return l.ID }

// PenaltyReport is the aggregate returned by the penalties report endpoint.
type PenaltyReport struct {
	Total      int            `json:"total"`
	ByCause    map[string]int `json:"by_cause"`
	ByDoctor   map[string]int `json:"by_doctor"`
	AmountSum  float64        `json:"amount_sum"`
	RangeStart string         `json:"range_start"`
	RangeEnd   string         `json:"range_end"`
}
