package content

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var authorFieldOrder = []string{
	"name", "avatar", "occupation", "company", "email", "twitter", "linkedin", "github",
}

type authorInput struct {
	Name       *string `json:"name"`
	Avatar     *string `json:"avatar"`
	Occupation *string `json:"occupation"`
	Company    *string `json:"company"`
	Email      *string `json:"email"`
	Twitter    *string `json:"twitter"`
	LinkedIn   *string `json:"linkedin"`
	Github     *string `json:"github"`
}

// Author validates raw front-matter of an author profile and derives its
// social links.
func (v *Validator) Author(raw map[string]any, id string) (Author, error) {
	issues := newIssueCollector(authorFieldOrder)
	f := fields{raw: raw, issues: issues}
	in := authorInput{
		Name:       f.str("name"),
		Avatar:     f.str("avatar"),
		Occupation: f.str("occupation"),
		Company:    f.str("company"),
		Email:      f.str("email"),
		Twitter:    f.str("twitter"),
		LinkedIn:   f.str("linkedin"),
		Github:     f.str("github"),
	}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NotNil),
		validation.Field(&in.Avatar, validation.NotNil),
		validation.Field(&in.Occupation, validation.NotNil),
		validation.Field(&in.Company, validation.NotNil),
		validation.Field(&in.Email, validation.NotNil),
		validation.Field(&in.Twitter, validation.By(wellFormedURL)),
		validation.Field(&in.LinkedIn, validation.By(wellFormedURL)),
		validation.Field(&in.Github, validation.By(wellFormedURL)),
	)
	if err := issues.merge(err); err != nil {
		return Author{}, err
	}
	if err := issues.result(id); err != nil {
		return Author{}, err
	}

	return Author{
		ID:         id,
		Slug:       SlugFromID(id),
		Name:       *in.Name,
		Avatar:     *in.Avatar,
		Occupation: *in.Occupation,
		Company:    *in.Company,
		Email:      *in.Email,
		Socials:    BuildSocials(deref(in.Twitter), deref(in.LinkedIn), deref(in.Github)),
	}, nil
}

// Provider names of social entries, in the order entries are built.
const (
	SocialTwitter  = "Twitter"
	SocialLinkedIn = "LinkedIn"
	SocialGithub   = "Github"
)

// BuildSocials appends one active entry per non-empty link, in the fixed
// order twitter, linkedin, github. Empty links contribute nothing.
func BuildSocials(twitter, linkedin, github string) []Social {
	socials := make([]Social, 0, 3)
	for _, p := range []struct{ name, href string }{
		{SocialTwitter, twitter},
		{SocialLinkedIn, linkedin},
		{SocialGithub, github},
	} {
		if p.href == "" {
			continue
		}
		socials = append(socials, Social{
			Name:      p.name,
			Href:      p.href,
			LinkTitle: p.name,
			Active:    true,
		})
	}
	return socials
}

// Social returns the href of the named provider, or "".
func (a Author) Social(name string) string {
	for _, s := range a.Socials {
		if s.Name == name {
			return s.Href
		}
	}
	return ""
}

func wellFormedURL(value any) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	if !IsURL(*s) {
		return validation.NewError(codeURL, "must be a valid URL")
	}
	return nil
}

// IsURL reports whether s is an absolute URL with a scheme and a host.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
