package result

import "strings"

// Slot identifies one of the canonical assessment columns of a subject.
type Slot int

const (
	// SlotUnclassified marks a label that matched no alias.
	SlotUnclassified Slot = iota
	SlotHomework
	SlotCA1
	SlotCA2
	SlotExam
)

// String returns the column name used on printed cards.
func (s Slot) String() string {
	switch s {
	case SlotHomework:
		return "Homework"
	case SlotCA1:
		return "CA1"
	case SlotCA2:
		return "CA2"
	case SlotExam:
		return "Exam"
	default:
		return "Unclassified"
	}
}

var slotAliases = map[string]Slot{
	"home work":                 SlotHomework,
	"homework":                  SlotHomework,
	"1st ca":                    SlotCA1,
	"first ca":                  SlotCA1,
	"1st continuous assessment": SlotCA1,
	"2nd ca":                    SlotCA2,
	"second ca":                 SlotCA2,
	"2nd continuous assessment": SlotCA2,
	"exam":                      SlotExam,
	"examination":               SlotExam,
	"final exam":                SlotExam,
}

// AssessmentType is the classified form of a free-text assessment label.
// Label keeps the original text so unclassified entries stay traceable.
type AssessmentType struct {
	Slot  Slot
	Label string
}

// ParseAssessmentType maps a label onto its canonical slot. Matching ignores
// case and runs of whitespace.
func ParseAssessmentType(label string) AssessmentType {
	normalized := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if slot, ok := slotAliases[normalized]; ok {
		return AssessmentType{Slot: slot, Label: label}
	}
	return AssessmentType{Slot: SlotUnclassified, Label: label}
}

// Assessment is a single graded entry as consumed by the engine.
type Assessment struct {
	Subject  string
	Type     string
	Score    float64
	MaxScore float64
}

// slots holds at most one assessment per canonical column of a subject.
type slots struct {
	homework *Assessment
	ca1      *Assessment
	ca2      *Assessment
	exam     *Assessment
}

// classify places the assessment into the accumulator. Unrecognised labels
// fill CA1 then CA2 in first-seen order; with both taken the entry is dropped
// and classify reports false.
func (s *slots) classify(a Assessment) bool {
	entry := a
	switch ParseAssessmentType(a.Type).Slot {
	case SlotHomework:
		s.homework = &entry
	case SlotCA1:
		s.ca1 = &entry
	case SlotCA2:
		s.ca2 = &entry
	case SlotExam:
		s.exam = &entry
	default:
		switch {
		case s.ca1 == nil:
			s.ca1 = &entry
		case s.ca2 == nil:
			s.ca2 = &entry
		default:
			return false
		}
	}
	return true
}
