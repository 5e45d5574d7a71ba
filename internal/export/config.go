package export

// Rounding policies for the synthetic price.
const (
	RoundInteger = "integer"
	RoundCents   = "cents"
)

// Config holds the downstream schema's cleanup rules.
type Config struct {
	Output               string   `yaml:"output"`
	UnknownAuthor        string   `yaml:"unknown_author" validate:"required"`
	UnknownPublisher     string   `yaml:"unknown_publisher" validate:"required"`
	UnknownBookPrefix    string   `yaml:"unknown_book_prefix" validate:"required"`
	PlaceholderPublisher []string `yaml:"placeholder_publishers"`
	PublisherMaxLen      int      `yaml:"publisher_max_len" validate:"gt=0"`
	AuthorMaxLen         int      `yaml:"author_max_len" validate:"gt=0"`
	NameMaxLen           int      `yaml:"name_max_len" validate:"gt=0"`
	AuthorIndicators     []string `yaml:"author_indicators"`
	AuthorSeparators     []string `yaml:"author_separators"`
	PriceMin             int      `yaml:"price_min" validate:"gte=0"`
	PriceMax             int      `yaml:"price_max" validate:"gtefield=PriceMin"`
	PriceFactor          float64  `yaml:"price_factor" validate:"gt=0"`
	PriceRounding        string   `yaml:"price_rounding" validate:"oneof=integer cents"`
}

func DefaultConfig() Config {
	return Config{
		Output:               "data/book.csv",
		UnknownAuthor:        "Unknown Author",
		UnknownPublisher:     "Unknown Publisher",
		UnknownBookPrefix:    "Unknown Book ",
		PlaceholderPublisher: []string{"新功能介紹"},
		PublisherMaxLen:      50,
		AuthorMaxLen:         60,
		NameMaxLen:           150,
		AuthorIndicators:     []string{"合著", "等", "編著", "譯者", "◎"},
		AuthorSeparators:     []string{"、", ",", "，", "/", "／"},
		PriceMin:             300,
		PriceMax:             500,
		PriceFactor:          0.1,
		PriceRounding:        RoundInteger,
	}
}
