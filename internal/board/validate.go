package board

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProfileForm carries the editable profile fields. Skills are managed
// separately (AddSkill / RemoveSkill).
type ProfileForm struct {
	Name     string `form:"name" json:"name" validate:"required,min=3"`
	Position string `form:"position" json:"position" validate:"required,min=3"`
}

// JobForm carries the create/update form fields. ID is empty for a
// creation and the existing id for an edit. Skills arrive as one
// comma-separated string, as typed in the form.
type JobForm struct {
	ID          string `form:"id" json:"id"`
	Company     string `form:"company" json:"company" validate:"required"`
	Position    string `form:"position" json:"position" validate:"required"`
	Logo        string `form:"logo" json:"logo" validate:"omitempty,url"`
	Contract    string `form:"contract" json:"contract" validate:"required"`
	Location    string `form:"location" json:"location" validate:"required"`
	Role        string `form:"role" json:"role" validate:"required"`
	Level       string `form:"level" json:"level" validate:"required"`
	Skills      string `form:"skills" json:"skills" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
}

// ValidationError lists the invalid fields of a rejected form, keyed by
// form field name, with user-facing French messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	return "champs invalides : " + strings.Join(names, ", ")
}

func (f *ProfileForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.Position = strings.TrimSpace(f.Position)
}

func (f *JobForm) trim() {
	f.ID = strings.TrimSpace(f.ID)
	f.Company = strings.TrimSpace(f.Company)
	f.Position = strings.TrimSpace(f.Position)
	f.Logo = strings.TrimSpace(f.Logo)
	f.Contract = strings.TrimSpace(f.Contract)
	f.Location = strings.TrimSpace(f.Location)
	f.Role = strings.TrimSpace(f.Role)
	f.Level = strings.TrimSpace(f.Level)
	f.Skills = strings.TrimSpace(f.Skills)
	f.Description = strings.TrimSpace(f.Description)
}

var profileMessages = map[string]string{
	"Name.required":     "Le nom complet est requis",
	"Name.min":          "Le nom doit contenir au moins 3 caractères",
	"Position.required": "Le poste souhaité est requis",
	"Position.min":      "Le poste doit contenir au moins 3 caractères",
}

var jobMessages = map[string]string{
	"Company.required":     "Le nom de l'entreprise est requis",
	"Position.required":    "Le poste est requis",
	"Logo.url":             "L'URL du logo est invalide",
	"Contract.required":    "Le type de contrat est requis",
	"Location.required":    "La localisation est requise",
	"Role.required":        "Le rôle est requis",
	"Level.required":       "Le niveau est requis",
	"Skills.required":      "Au moins une compétence est requise",
	"Description.required": "La description est requise",
}

// checkForm runs the validator and translates failures into a
// *ValidationError with per-field French messages.
func checkForm(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Champ invalide"
		}
		fields[strings.ToLower(fe.Field())] = msg
	}
	return &ValidationError{Fields: fields}
}
