package ingest

import "time"

// Config tunes the pipeline and holds the per-source settings.
type Config struct {
	BatchSize        int               `yaml:"batch_size" validate:"gt=0"`
	Target           int               `yaml:"target" validate:"gte=0"` // max new candidates per run, 0 for no limit
	InsertRetries    int               `yaml:"insert_retries" validate:"gte=0"`
	InsertRetryDelay time.Duration     `yaml:"insert_retry_delay" validate:"gte=0"`
	OpenLibrary      OpenLibraryConfig `yaml:"openlibrary"`
	BooksComTW       ShopConfig        `yaml:"bookscomtw"`
	Eslite           ShopConfig        `yaml:"eslite"`
}

func DefaultConfig() Config {
	return Config{
		BatchSize:        50,
		Target:           500,
		InsertRetries:    2,
		InsertRetryDelay: time.Second,
		OpenLibrary:      DefaultOpenLibraryConfig(),
		BooksComTW:       DefaultBooksComTWConfig(),
		Eslite:           DefaultEsliteConfig(),
	}
}

// OpenLibraryConfig drives the mixed search strategy.
type OpenLibraryConfig struct {
	BaseURL      string   `yaml:"base_url" validate:"required,url"`
	PageSize     int      `yaml:"page_size" validate:"gt=0"`
	SubjectLimit int      `yaml:"subject_limit" validate:"gte=0"`
	AuthorLimit  int      `yaml:"author_limit" validate:"gte=0"`
	KeywordLimit int      `yaml:"keyword_limit" validate:"gte=0"`
	Subjects     []string `yaml:"subjects"`
	Authors      []string `yaml:"authors"`
	Keywords     []string `yaml:"keywords"`
}

func DefaultOpenLibraryConfig() OpenLibraryConfig {
	return OpenLibraryConfig{
		BaseURL:      "https://openlibrary.org",
		PageSize:     100,
		SubjectLimit: 50,
		AuthorLimit:  30,
		KeywordLimit: 40,
		Subjects: []string{
			"Fiction", "Science", "History", "Biography", "Technology",
			"Philosophy", "Literature", "Art", "Mathematics", "Psychology",
			"Business", "Education", "Travel", "Cooking", "Health",
			"Religion", "Poetry", "Drama", "Mystery", "Romance",
		},
		Authors: []string{
			"Stephen King", "J.K. Rowling", "George Orwell", "Jane Austen", "Ernest Hemingway",
			"Mark Twain", "Charles Dickens", "William Shakespeare", "Agatha Christie", "Isaac Asimov",
			"J.R.R. Tolkien", "Harper Lee", "F. Scott Fitzgerald", "Virginia Woolf", "Toni Morrison",
			"Maya Angelou", "Gabriel Garcia Marquez", "Milan Kundera", "Kazuo Ishiguro", "Haruki Murakami",
		},
		Keywords: []string{
			"best books", "classic literature", "popular books", "award winning", "bestseller",
			"must read", "recommended", "famous books", "great novels", "literary classics",
			"contemporary fiction", "modern literature", "essential reading", "book club", "top rated",
		},
	}
}

// ShopCategory is one category listing to browse.
type ShopCategory struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url" validate:"required,url"`
	Max  int    `yaml:"max" validate:"gte=0"` // 0 for no per-category limit
}

// ShopConfig drives an e-commerce source.
type ShopConfig struct {
	MaxPages   int            `yaml:"max_pages" validate:"gt=0"`
	Categories []ShopCategory `yaml:"categories" validate:"dive"`
}

func DefaultBooksComTWConfig() ShopConfig {
	return ShopConfig{
		MaxPages: 10,
		Categories: []ShopCategory{
			{"中文書-文學小說", "https://www.books.com.tw/web/books_nbtopm_01/?loc=P_0001_001", 100},
			{"中文書-商業理財", "https://www.books.com.tw/web/books_nbtopm_02/?loc=P_0003_002", 100},
			{"中文書-童書/青少年圖書", "https://www.books.com.tw/web/books_nbtopm_14/?loc=P_0003_012", 100},
			{"中文書-輕小說", "https://www.books.com.tw/web/books_nbtopm_15/?loc=P_0003_016", 100},
			{"中文書-語言學習", "https://www.books.com.tw/web/books_nbtopm_17/?loc=P_0003_018", 100},
			{"中文書-自然科普", "https://www.books.com.tw/web/books_nbtopm_06/?loc=P_0003_007", 100},
			{"中文書-飲食", "https://www.books.com.tw/web/books_nbtopm_09/?loc=P_0003_009", 100},
			{"中文書-醫療保健", "https://www.books.com.tw/web/books_nbtopm_08/?loc=P_0003_008", 100},
			{"中文書-漫畫", "https://www.books.com.tw/web/books_nbtopm_16/?loc=P_0003_017", 100},
			{"中文書-親子教養", "https://www.books.com.tw/web/books_nbtopm_13/?loc=P_0003_014", 100},
		},
	}
}

func DefaultEsliteConfig() ShopConfig {
	return ShopConfig{
		MaxPages: 50,
		Categories: []ShopCategory{
			{"中國文學論集", "https://www.eslite.com/category/3/29", 100},
			{"歐美文學", "https://www.eslite.com/category/3/32", 100},
			{"世界文學", "https://www.eslite.com/category/3/33", 100},
			{"詩", "https://www.eslite.com/category/3/35", 100},
			{"自然文學", "https://www.eslite.com/category/3/37", 100},
			{"武俠/歷史小說", "https://www.eslite.com/category/3/41", 100},
			{"推理/驚悚小說", "https://www.eslite.com/category/3/42", 100},
			{"言情小說", "https://www.eslite.com/category/3/43", 100},
			{"科幻/奇幻小說", "https://www.eslite.com/category/3/44", 100},
			{"旅行文學", "https://www.eslite.com/category/3/39", 100},
		},
	}
}
