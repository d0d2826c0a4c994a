package commands

type CreateAttribute struct {
	Scope          string        `json:"scope"`
	Type           string        `json:"type"`
	Title          string        `json:"title"`
	ShortTitle     string        `json:"shortTitle,omitempty"`
	Description    string        `json:"description,omitempty"`
	IsRequired     bool          `json:"isRequired"`
	IsHidden       bool          `json:"isHidden"`
	IsMultiple     bool          `json:"isMultiple"`
	ValueOptions   []ValueOption `json:"valueOptions,omitempty"`
	DefaultValue   interface{}   `json:"defaultValue,omitempty"`
	IsSystem       bool          `json:"isSystem"`
	IsEditable     bool          `json:"isEditable"`
	IsFilterable   bool          `json:"isFilterable"`
	BlockchainMeta interface{}   `json:"blockchainFieldMeta,omitempty"`
}

type ValueOption struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

func (p CreateAttribute) kind() Kind { return KindCreateAttribute }

func (p CreateAttribute) validate() *ValidationError {
	c := newChecker(KindCreateAttribute)
	validateAttributeFields(c, p)
	return c.result()
}

func validateAttributeFields(c *checker, p CreateAttribute) {
	c.requireString("scope", p.Scope)
	c.requireString("type", p.Type)
	c.requireString("title", p.Title)
	for i, o := range p.ValueOptions {
		if o.Value == "" {
			c.invalid("valueOptions", i, "option value is required")
		}
	}
}

func NewCreateAttributeCmd(p CreateAttribute) (*Cmd, error) {
	return build(p)
}

type UpdateAttribute struct {
	ID string `json:"_id"`
	CreateAttribute
}

func (p UpdateAttribute) kind() Kind { return KindUpdateAttribute }

func (p UpdateAttribute) validate() *ValidationError {
	c := newChecker(KindUpdateAttribute)
	c.requireString("_id", p.ID)
	validateAttributeFields(c, p.CreateAttribute)
	return c.result()
}

func NewUpdateAttributeCmd(p UpdateAttribute) (*Cmd, error) {
	return build(p)
}

type DeleteAttribute struct {
	ID string `json:"_id"`
}

func (p DeleteAttribute) kind() Kind { return KindDeleteAttribute }

func (p DeleteAttribute) validate() *ValidationError {
	c := newChecker(KindDeleteAttribute)
	c.requireString("_id", p.ID)
	return c.result()
}

func NewDeleteAttributeCmd(p DeleteAttribute) (*Cmd, error) {
	return build(p)
}

type CreateLayout struct {
	Name  string      `json:"name"`
	Scope string      `json:"scope"`
	Type  string      `json:"type,omitempty"`
	Value interface{} `json:"value"`
}

func (p CreateLayout) kind() Kind { return KindCreateLayout }

func (p CreateLayout) validate() *ValidationError {
	c := newChecker(KindCreateLayout)
	validateLayoutFields(c, p)
	return c.result()
}

func validateLayoutFields(c *checker, p CreateLayout) {
	c.requireString("name", p.Name)
	c.requireString("scope", p.Scope)
	c.requirePresent("value", p.Value != nil)
}

func NewCreateLayoutCmd(p CreateLayout) (*Cmd, error) {
	return build(p)
}

type UpdateLayout struct {
	ID string `json:"_id"`
	CreateLayout
}

func (p UpdateLayout) kind() Kind { return KindUpdateLayout }

func (p UpdateLayout) validate() *ValidationError {
	c := newChecker(KindUpdateLayout)
	c.requireString("_id", p.ID)
	validateLayoutFields(c, p.CreateLayout)
	return c.result()
}

func NewUpdateLayoutCmd(p UpdateLayout) (*Cmd, error) {
	return build(p)
}

type DeleteLayout struct {
	ID string `json:"_id"`
}

func (p DeleteLayout) kind() Kind { return KindDeleteLayout }

func (p DeleteLayout) validate() *ValidationError {
	c := newChecker(KindDeleteLayout)
	c.requireString("_id", p.ID)
	return c.result()
}

func NewDeleteLayoutCmd(p DeleteLayout) (*Cmd, error) {
	return build(p)
}

// UpdatePortalSettings replaces the attribute or layout mappings of the portal.
type UpdatePortalSettings struct {
	Mappings map[string]interface{} `json:"mappings"`
}

func (p UpdatePortalSettings) kind() Kind { return KindUpdatePortalSettings }

func (p UpdatePortalSettings) validate() *ValidationError {
	c := newChecker(KindUpdatePortalSettings)
	c.requirePresent("mappings", len(p.Mappings) > 0)
	return c.result()
}

func NewUpdatePortalSettingsCmd(p UpdatePortalSettings) (*Cmd, error) {
	return build(p)
}
