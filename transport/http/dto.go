package http

import (
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/service"
	"github.com/shopspring/decimal"
)

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Address       string `json:"address"`
	Nonce         string `json:"nonce"`
	SignedMessage string `json:"signedMessage"`
}

// ProjectRequest is a portfolio entry in a signup request
type ProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// SignupRequest is the body of POST /signup, or the data field of its multipart form
type SignupRequest struct {
	Address       string           `json:"address"`
	Nickname      string           `json:"nickname"`
	Role          string           `json:"role"`
	Nonce         string           `json:"nonce"`
	SignedMessage string           `json:"signedMessage"`
	Title         string           `json:"title"`
	Skills        []string         `json:"skills"`
	Projects      []ProjectRequest `json:"projects"`
}

func (r LoginRequest) input() service.LoginInput {
	return service.LoginInput{
		Address:   r.Address,
		Nonce:     r.Nonce,
		Signature: r.SignedMessage,
	}
}

// input attaches uploaded files to the project with the same index
func (r SignupRequest) input(files map[int][]service.FileInput) service.SignupInput {
	projects := make([]service.ProjectInput, 0, len(r.Projects))
	for i, p := range r.Projects {
		projects = append(projects, service.ProjectInput{
			Title:       p.Title,
			Description: p.Description,
			Link:        p.Link,
			Files:       files[i],
		})
	}

	return service.SignupInput{
		Address:   r.Address,
		Nonce:     r.Nonce,
		Signature: r.SignedMessage,
		Nickname:  r.Nickname,
		Role:      r.Role,
		Title:     r.Title,
		Skills:    r.Skills,
		Projects:  projects,
	}
}

// UserView is the user returned alongside a new session
type UserView struct {
	Address  string `json:"address"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// AuthResponse is returned by login and signup
type AuthResponse struct {
	AccessToken string   `json:"accessToken"`
	User        UserView `json:"user"`
}

// RefreshResponse is returned by refresh
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// NonceResponse is returned by the nonce endpoint
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// ProfileView is the public profile of a user
type ProfileView struct {
	Address       string          `json:"address"`
	Nickname      string          `json:"nickname"`
	Role          string          `json:"role"`
	Title         string          `json:"title,omitempty"`
	Skills        []string        `json:"skills"`
	Projects      []core.Project  `json:"projects"`
	Github        string          `json:"github,omitempty"`
	Portfolio     string          `json:"portfolio,omitempty"`
	PublishedJobs int             `json:"publishedJobs"`
	CompletedJobs int             `json:"completedJobs"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
}

// AccountView adds private contact details for the account owner
type AccountView struct {
	ProfileView
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

func newUserView(u *core.User) UserView {
	return UserView{
		Address:  u.Address,
		Nickname: u.Nickname,
		Role:     string(u.Role),
	}
}

func newProfileView(u *core.User) ProfileView {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	projects := u.Projects
	if projects == nil {
		projects = []core.Project{}
	}

	return ProfileView{
		Address:       u.Address,
		Nickname:      u.Nickname,
		Role:          string(u.Role),
		Title:         u.Title,
		Skills:        skills,
		Projects:      projects,
		Github:        u.Github,
		Portfolio:     u.Portfolio,
		PublishedJobs: u.PublishedJobs,
		CompletedJobs: u.CompletedJobs,
		TotalEarnings: u.TotalEarnings,
		TotalSpent:    u.TotalSpent,
	}
}

func newAccountView(u *core.User) AccountView {
	return AccountView{
		ProfileView: newProfileView(u),
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		Active:      u.Active,
	}
}
