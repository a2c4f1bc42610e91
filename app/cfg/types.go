package cfg

type Cfg struct {
	// Application configuration
	Port         string
	BaseUrl      string
	FeedsDir     string
	APIAccessKey string

	// Pipeline knobs
	ResultCap           int
	SimilarityThreshold float64
	MinTokens           int
	KeepPerCluster      int
	CacheTTL            int
	SearchCacheTTL      int
	DirectTimeout       int
	ProxyTimeout        int
	SlowProxyTimeout    int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
