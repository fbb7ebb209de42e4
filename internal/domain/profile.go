package domain

// MemberProfile is the data extracted from a single member wiki page.
// Only Name is required; a profile without it is discarded by callers.
type MemberProfile struct {
	Name        string `json:"name_en"`
	NameJP      string `json:"name_jp"`
	Nickname    string `json:"nickname"`
	Birthday    string `json:"birthday"`
	Birthplace  string `json:"birthplace"`
	BloodType   string `json:"blood_type"`
	Zodiac      string `json:"zodiac"`
	Height      string `json:"height"`
	Occupation  string `json:"occupation"`
	YearsActive string `json:"years_active"`
	Agency      string `json:"agency"`
	Generation  string `json:"generation"`
	Group       string `json:"group"`
	Bio         string `json:"bio"`
}

// ProfileField is a labelled, non-empty profile value.
type ProfileField struct {
	Label string
	Value string
}

// HasName reports whether the profile carries its identifying name.
func (p *MemberProfile) HasName() bool {
	return p != nil && p.Name != ""
}

// DisplayName prefers the localized name.
func (p *MemberProfile) DisplayName() string {
	if p.NameJP != "" {
		return p.NameJP
	}
	return p.Name
}

// Fields returns the populated fields in display order.
func (p *MemberProfile) Fields() []ProfileField {
	all := []ProfileField{
		{"Name", p.Name},
		{"Japanese name", p.NameJP},
		{"Nickname", p.Nickname},
		{"Birthday", p.Birthday},
		{"Birthplace", p.Birthplace},
		{"Blood type", p.BloodType},
		{"Zodiac", p.Zodiac},
		{"Height", p.Height},
		{"Occupation", p.Occupation},
		{"Years active", p.YearsActive},
		{"Agency", p.Agency},
		{"Generation", p.Generation},
		{"Group", p.Group},
		{"Bio", p.Bio},
	}

	fields := make([]ProfileField, 0, len(all))
	for _, f := range all {
		if f.Value != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
