package codegen

// Options configures script generation.
type Options struct {
	WrapAsync                bool   `json:"wrapAsync" yaml:"wrapAsync"`
	Headless                 bool   `json:"headless" yaml:"headless"`
	WaitForNavigation        bool   `json:"waitForNavigation" yaml:"waitForNavigation"`
	WaitForSelectorOnClick   bool   `json:"waitForSelectorOnClick" yaml:"waitForSelectorOnClick"`
	BlankLinesBetweenBlocks  bool   `json:"blankLinesBetweenBlocks" yaml:"blankLinesBetweenBlocks"`
	DataAttribute            string `json:"dataAttribute" yaml:"dataAttribute"`
	UseRegexForDataAttribute bool   `json:"useRegexForDataAttribute" yaml:"useRegexForDataAttribute"`
	CustomLineAfterClick     string `json:"customLineAfterClick" yaml:"customLineAfterClick"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		WrapAsync:               true,
		Headless:                true,
		WaitForNavigation:       true,
		WaitForSelectorOnClick:  true,
		BlankLinesBetweenBlocks: true,
	}
}

// Overrides holds caller-supplied options. Nil fields keep the value they are applied to.
type Overrides struct {
	WrapAsync                *bool   `json:"wrapAsync,omitempty" yaml:"wrapAsync,omitempty" envconfig:"WRAP_ASYNC"`
	Headless                 *bool   `json:"headless,omitempty" yaml:"headless,omitempty" envconfig:"HEADLESS"`
	WaitForNavigation        *bool   `json:"waitForNavigation,omitempty" yaml:"waitForNavigation,omitempty" envconfig:"WAIT_FOR_NAVIGATION"`
	WaitForSelectorOnClick   *bool   `json:"waitForSelectorOnClick,omitempty" yaml:"waitForSelectorOnClick,omitempty" envconfig:"WAIT_FOR_SELECTOR_ON_CLICK"`
	BlankLinesBetweenBlocks  *bool   `json:"blankLinesBetweenBlocks,omitempty" yaml:"blankLinesBetweenBlocks,omitempty" envconfig:"BLANK_LINES_BETWEEN_BLOCKS"`
	DataAttribute            *string `json:"dataAttribute,omitempty" yaml:"dataAttribute,omitempty" envconfig:"DATA_ATTRIBUTE"`
	UseRegexForDataAttribute *bool   `json:"useRegexForDataAttribute,omitempty" yaml:"useRegexForDataAttribute,omitempty" envconfig:"USE_REGEX_FOR_DATA_ATTRIBUTE"`
	CustomLineAfterClick     *string `json:"customLineAfterClick,omitempty" yaml:"customLineAfterClick,omitempty" envconfig:"CUSTOM_LINE_AFTER_CLICK"`
}

// Apply returns a copy of o with every non-nil override set.
func (o Options) Apply(overrides ...Overrides) Options {
	for _, ov := range overrides {
		setBool(&o.WrapAsync, ov.WrapAsync)
		setBool(&o.Headless, ov.Headless)
		setBool(&o.WaitForNavigation, ov.WaitForNavigation)
		setBool(&o.WaitForSelectorOnClick, ov.WaitForSelectorOnClick)
		setBool(&o.BlankLinesBetweenBlocks, ov.BlankLinesBetweenBlocks)
		setString(&o.DataAttribute, ov.DataAttribute)
		setBool(&o.UseRegexForDataAttribute, ov.UseRegexForDataAttribute)
		setString(&o.CustomLineAfterClick, ov.CustomLineAfterClick)
	}
	return o
}

// Resolve merges overrides over the defaults.
func Resolve(overrides ...Overrides) Options {
	return DefaultOptions().Apply(overrides...)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
