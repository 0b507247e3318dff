package service

import (
	"strings"

	"github.com/layer-3/freelance/core"
)

const (
	MsgMissingFields   = "Tutti i campi sono obbligatori"
	MsgInvalidNonce    = "Nonce non valido o scaduto"
	MsgSignatureFailed = "Verifica firma fallita"
	MsgUserNotFound    = "Utente non trovato. Registrati prima di effettuare il login."
	MsgInactive        = "Account disattivato"
	MsgInvalidRole     = "Ruolo non valido"
	MsgMissingTitle    = "Titolo obbligatorio per i freelancer"
	MsgMissingSkills   = "Almeno una competenza è obbligatoria per i freelancer"
	MsgInvalidProject  = "Ogni progetto deve avere titolo e descrizione"
	MsgUnauthorized    = "Unauthorized"
	MsgForbidden       = "Forbidden"
)

// LoginInput is a signed login attempt
type LoginInput struct {
	Address   string
	Nonce     string
	Signature string
}

// Validate checks that every field is present
func (in LoginInput) Validate() error {
	if blank(in.Address) || blank(in.Nonce) || blank(in.Signature) {
		return core.NewError(core.KindValidation, MsgMissingFields, nil)
	}
	return nil
}

// FileInput is an uploaded file awaiting storage
type FileInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProjectInput is a portfolio entry submitted at signup
type ProjectInput struct {
	Title       string
	Description string
	Link        string
	Files       []FileInput
}

// SignupInput is a signed registration request
type SignupInput struct {
	Address   string
	Nonce     string
	Signature string
	Nickname  string
	Role      string

	// Only kept for freelancers
	Title    string
	Skills   []string
	Projects []ProjectInput
}

// Validate checks required and role-specific fields before any nonce is consumed
func (in SignupInput) Validate() error {
	if blank(in.Address) || blank(in.Nonce) || blank(in.Signature) || blank(in.Nickname) {
		return core.NewError(core.KindValidation, MsgMissingFields, nil)
	}

	role, ok := core.ParseRole(in.Role)
	if !ok {
		return core.NewError(core.KindValidation, MsgInvalidRole, nil)
	}
	if role != core.RoleFreelancer {
		return nil
	}

	if blank(in.Title) {
		return core.NewError(core.KindValidation, MsgMissingTitle, nil)
	}
	if len(cleanSkills(in.Skills)) == 0 {
		return core.NewError(core.KindValidation, MsgMissingSkills, nil)
	}
	for _, p := range in.Projects {
		if blank(p.Title) || blank(p.Description) {
			return core.NewError(core.KindValidation, MsgInvalidProject, nil)
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
