package content

// FrontMatter re-serialises the post's front-matter fields. Validating the
// result again yields the same record.
func (p BlogPost) FrontMatter() map[string]any {
	raw := map[string]any{
		"author":      p.Author,
		"pubDatetime": p.PubDatetime,
		"title":       p.Title,
		"description": p.Description,
		"featured":    p.Featured,
		"draft":       p.Draft,
		"tags":        append([]string{}, p.Tags...),
		"category":    string(p.Category),
	}
	if p.ModDatetime != nil {
		raw["modDatetime"] = *p.ModDatetime
	}
	if p.CanonicalURL != "" {
		raw["canonicalURL"] = p.CanonicalURL
	}
	if p.OGImage != nil {
		switch p.OGImage.Kind {
		case OGImageAsset:
			raw["ogImage"] = p.OGImage.Asset.frontMatter()
		case OGImageURL:
			raw["ogImage"] = p.OGImage.URL
		}
	}
	if p.EditPost != nil {
		edit := map[string]any{}
		if p.EditPost.Disabled != nil {
			edit["disabled"] = *p.EditPost.Disabled
		}
		if p.EditPost.URL != nil {
			edit["url"] = *p.EditPost.URL
		}
		if p.EditPost.Text != nil {
			edit["text"] = *p.EditPost.Text
		}
		if p.EditPost.AppendFilePath != nil {
			edit["appendFilePath"] = *p.EditPost.AppendFilePath
		}
		raw["editPost"] = edit
	}
	return raw
}

func (a ImageAsset) frontMatter() map[string]any {
	return map[string]any{
		"src":    a.Src,
		"width":  a.Width,
		"height": a.Height,
		"format": a.Format,
	}
}

// FrontMatter re-serialises the author. Socials fold back into their
// input link fields.
func (a Author) FrontMatter() map[string]any {
	raw := map[string]any{
		"name":       a.Name,
		"avatar":     a.Avatar,
		"occupation": a.Occupation,
		"company":    a.Company,
		"email":      a.Email,
	}
	for key, provider := range map[string]string{
		"twitter":  SocialTwitter,
		"linkedin": SocialLinkedIn,
		"github":   SocialGithub,
	} {
		if href := a.Social(provider); href != "" {
			raw[key] = href
		}
	}
	return raw
}
