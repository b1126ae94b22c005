package main

import "github.com/tbxark/fillform"

const (
	sampleFormFilename = "employment_form.pdf"
	sampleFormTitle    = "Employment Application"
)

func sampleFormFields() []fillform.FormField {
	return []fillform.FormField{
		{
			ID:          "full_name",
			Name:        "Full name",
			Description: "The applicant's full legal name",
			Type:        fillform.FieldTypeText,
			Required:    true,
		},
		{
			ID:          "start_date",
			Name:        "Start date",
			Description: "Earliest date the applicant can start",
			Type:        fillform.FieldTypeDate,
			Required:    true,
		},
		{
			ID:          "employment_type",
			Name:        "Employment type",
			Type:        fillform.FieldTypeMultipleChoice,
			Options:     []string{"full-time", "part-time", "contract"},
			Selections:  fillform.SelectOne,
			Required:    true,
		},
		{
			ID:          "preferred_locations",
			Name:        "Preferred locations",
			Description: "Offices the applicant is willing to work from",
			Type:        fillform.FieldTypeMultipleChoice,
			Options:     []string{"Amsterdam", "Berlin", "Lisbon"},
			Selections:  fillform.SelectMany,
			Required:    false,
		},
		{
			ID:       "signature",
			Name:     "Signature",
			Type:     fillform.FieldTypeSignature,
			Required: false,
		},
	}
}
