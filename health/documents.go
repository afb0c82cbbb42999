package health

// Upstream keeper documents. Only the fields the pipeline reads are decoded.

type validator interface {
	validate() error
}

type productListDoc struct {
	Products []string `json:"products"`
}

// validate rejects a missing or null list. An empty list is valid.
func (d *productListDoc) validate() error {
	if d.Products == nil {
		return errMissingField("products")
	}
	return nil
}

type productDoc struct {
	Slug         string  `json:"slug"`
	PublishedURL *string `json:"published_url"`
}

func (d *productDoc) validate() error {
	if d.Slug == "" {
		return errMissingField("slug")
	}
	return nil
}

type editionListDoc struct {
	Editions []string `json:"editions"`
}

func (d *editionListDoc) validate() error {
	if d.Editions == nil {
		return errMissingField("editions")
	}
	return nil
}

type editionDoc struct {
	Slug         string  `json:"slug"`
	PublishedURL string  `json:"published_url"`
	BuildURL     *string `json:"build_url"`
}

func (d *editionDoc) validate() error {
	if d.Slug == "" {
		return errMissingField("slug")
	}
	if d.BuildURL != nil && d.PublishedURL == "" {
		return errMissingField("published_url")
	}
	return nil
}
