package settings

// DataVersion marks the on-disk dataset layout.
const DataVersion = "1.0.0"

// Settings is the operator-wide configuration singleton.
type Settings struct {
	CurrencySymbol    string `json:"currencySymbol"`
	LowStockThreshold int    `json:"lowStockThreshold"`
	Language          string `json:"language"`
}

// Defaults returns the out-of-the-box configuration.
func Defaults() Settings {
	return Settings{
		CurrencySymbol:    "Rs.",
		LowStockThreshold: 5,
		Language:          "si",
	}
}

// Patch is a partial settings update; nil fields are left as they are.
type Patch struct {
	CurrencySymbol    *string `json:"currencySymbol"`
	LowStockThreshold *int    `json:"lowStockThreshold"`
	Language          *string `json:"language"`
}

// Snapshot is the transportable backup bundle. Each field is the raw
// serialized form of the corresponding persisted key.
type Snapshot struct {
	Items    string `json:"items,omitempty"`
	Logs     string `json:"logs,omitempty"`
	Settings string `json:"settings,omitempty"`
	Version  string `json:"version,omitempty"`
	Theme    string `json:"theme,omitempty"`
}
