// Package family holds the domain record collected by the enrollment wizard:
// one family with its students, legal guardians, address, emergency contacts
// and authorizations. Records are read-only input to the extractors.
package family

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParentType identifies a guardian's role.
type ParentType string

const (
	Mother   ParentType = "mother"
	Father   ParentType = "father"
	Guardian ParentType = "guardian"
)

// Family is the root record.
type Family struct {
	Students          []Student          `json:"students" yaml:"students"`
	Parents           []Parent           `json:"parents" yaml:"parents"`
	Address           Address            `json:"address" yaml:"address"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts,omitempty" yaml:"emergencyContacts,omitempty"`
	Authorizations    Authorizations     `json:"authorizations" yaml:"authorizations"`
	SignaturePlace    string             `json:"signaturePlace,omitempty" yaml:"signaturePlace,omitempty"`
}

type Student struct {
	FirstName      string      `json:"firstName" yaml:"firstName"`
	LastName       string      `json:"lastName" yaml:"lastName"`
	BirthDate      Date        `json:"birthDate" yaml:"birthDate"`
	Gender         string      `json:"gender,omitempty" yaml:"gender,omitempty"`
	Grade          string      `json:"grade,omitempty" yaml:"grade,omitempty"`
	School         string      `json:"school,omitempty" yaml:"school,omitempty"`
	PreviousSchool string      `json:"previousSchool,omitempty" yaml:"previousSchool,omitempty"`
	Medical        MedicalInfo `json:"medical" yaml:"medical"`
	Activities     Activities  `json:"activities" yaml:"activities"`
}

// FullName returns "First Last", trimmed.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type Parent struct {
	Type       ParentType `json:"type" yaml:"type"`
	FirstName  string     `json:"firstName" yaml:"firstName"`
	LastName   string     `json:"lastName" yaml:"lastName"`
	Email      string     `json:"email,omitempty" yaml:"email,omitempty"`
	Phone      string     `json:"phone,omitempty" yaml:"phone,omitempty"`
	WorkPhone  string     `json:"workPhone,omitempty" yaml:"workPhone,omitempty"`
	Profession string     `json:"profession,omitempty" yaml:"profession,omitempty"`
	Employer   string     `json:"employer,omitempty" yaml:"employer,omitempty"`
}

// FullName returns "First Last", trimmed.
func (p Parent) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Relationship is the French label of the parent's role.
func (p Parent) Relationship() string {
	switch p.Type {
	case Mother:
		return "Mère"
	case Father:
		return "Père"
	case Guardian:
		return "Tuteur"
	}
	return ""
}

type Address struct {
	Street     string `json:"street" yaml:"street"`
	City       string `json:"city" yaml:"city"`
	PostalCode string `json:"postalCode" yaml:"postalCode"`
	Country    string `json:"country" yaml:"country"`
}

type EmergencyContact struct {
	Name         string `json:"name" yaml:"name"`
	Relationship string `json:"relationship,omitempty" yaml:"relationship,omitempty"`
	Phone        string `json:"phone" yaml:"phone"`
}

type MedicalInfo struct {
	Allergies            []string `json:"allergies,omitempty" yaml:"allergies,omitempty"`
	Treatments           []string `json:"treatments,omitempty" yaml:"treatments,omitempty"`
	DoctorName           string   `json:"doctorName,omitempty" yaml:"doctorName,omitempty"`
	DoctorPhone          string   `json:"doctorPhone,omitempty" yaml:"doctorPhone,omitempty"`
	VaccinationsUpToDate bool     `json:"vaccinationsUpToDate" yaml:"vaccinationsUpToDate"`
	PAI                  bool     `json:"pai" yaml:"pai"`
	Diet                 string   `json:"diet,omitempty" yaml:"diet,omitempty"`
}

type Activities struct {
	Canteen     bool   `json:"canteen" yaml:"canteen"`
	MorningCare bool   `json:"morningCare" yaml:"morningCare"`
	EveningCare bool   `json:"eveningCare" yaml:"eveningCare"`
	Wednesday   bool   `json:"wednesday" yaml:"wednesday"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

type Authorizations struct {
	Photo             bool     `json:"photo" yaml:"photo"`
	LeaveAlone        bool     `json:"leaveAlone" yaml:"leaveAlone"`
	AuthorizedPickups []string `json:"authorizedPickups,omitempty" yaml:"authorizedPickups,omitempty"`
}

// FirstStudent returns the first student or the zero Student.
func (f *Family) FirstStudent() Student {
	if f == nil || len(f.Students) == 0 {
		return Student{}
	}
	return f.Students[0]
}

// ParentAt returns the i-th parent or the zero Parent.
func (f *Family) ParentAt(i int) Parent {
	if f == nil || i < 0 || i >= len(f.Parents) {
		return Parent{}
	}
	return f.Parents[i]
}

// Parent returns the first parent of the given type or the zero Parent.
func (f *Family) Parent(t ParentType) Parent {
	if f == nil {
		return Parent{}
	}
	for _, p := range f.Parents {
		if p.Type == t {
			return p
		}
	}
	return Parent{}
}

// EmergencyContact returns the first emergency contact or the zero value.
func (f *Family) EmergencyContact() EmergencyContact {
	if f == nil || len(f.EmergencyContacts) == 0 {
		return EmergencyContact{}
	}
	return f.EmergencyContacts[0]
}

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. The empty string gives the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
