package model

// RemoteConfig points at the geometry extraction service used for CAD
// formats the engine cannot read itself.
type RemoteConfig struct {
	URL            string `json:"url"`             // empty disables the remote path
	TimeoutSeconds int    `json:"timeout_seconds"` // per request
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `json:"level"`  // debug, info, warn, error
	Format      string `json:"format"` // json or console
	Development bool   `json:"development"`
}

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Quote defaults applied when a request leaves a field empty
	DefaultMaterial  string         `json:"default_material"`
	DefaultFinish    string         `json:"default_finish"`
	DefaultTolerance ToleranceClass `json:"default_tolerance"`
	DefaultLeadTime  LeadTime       `json:"default_lead_time"`
	DefaultQuantity  int            `json:"default_quantity"`

	// Pricing factors
	WastePercent   float64 `json:"waste_percent"`   // stock waste on top of the geometric allowance
	StockAllowance float64 `json:"stock_allowance"` // mm added to each block dimension
	NestingKerf    float64 `json:"nesting_kerf"`    // mm between nested blanks
	NestingTrim    float64 `json:"nesting_trim"`    // mm trimmed from each sheet edge
	CacheCapacity  int     `json:"cache_capacity"`  // pricing cache entries, 0 disables caching
	Currency       string  `json:"currency"`

	Remote     RemoteConfig `json:"remote"`
	Log        LogConfig    `json:"log"`
	Thresholds Thresholds   `json:"thresholds"`

	// Application preferences
	WatchDebounceMillis int      `json:"watch_debounce_millis"`
	RecentFiles         []string `json:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultMaterial:  DefaultMaterialCode,
		DefaultFinish:    DefaultFinishCode,
		DefaultTolerance: ToleranceStandard,
		DefaultLeadTime:  LeadTimeStandard,
		DefaultQuantity:  1,
		WastePercent:     10,
		StockAllowance:   3,
		NestingKerf:      2,
		NestingTrim:      10,
		CacheCapacity:    256,
		Currency:         "USD",
		Remote: RemoteConfig{
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Thresholds:          DefaultThresholds(),
		WatchDebounceMillis: 500,
		RecentFiles:         []string{},
	}
}

// ApplyDefaults fills the empty fields of a pricing request from the config.
func (c AppConfig) ApplyDefaults(in *PricingInput) {
	if in.MaterialCode == "" {
		in.MaterialCode = c.DefaultMaterial
	}
	if in.FinishCode == "" {
		in.FinishCode = c.DefaultFinish
	}
	if in.Tolerance == "" {
		in.Tolerance = c.DefaultTolerance
	}
	if in.LeadTime == "" {
		in.LeadTime = c.DefaultLeadTime
	}
	if in.Quantity == 0 {
		in.Quantity = c.DefaultQuantity
	}
}

// AddRecentFile moves path to the front of the recent list, keeping at most
// ten entries.
func (c *AppConfig) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > 10 {
		files = files[:10]
	}
	c.RecentFiles = files
}
