package seed

// CatalogFile is the top-level structure of the seed catalog YAML:
//
//	categories:
//	  - name: Shopee
//	    order: 1
//	    links:
//	      - title: Emas Antam 1 gram
//	        url: https://shopee.co.id/...
//	        image: https://res.cloudinary.com/...
//	        price: 1631000
type CatalogFile struct {
	Categories []CategoryEntry `yaml:"categories"`
}

type CategoryEntry struct {
	Name  string      `yaml:"name"`
	Order int         `yaml:"order,omitempty"`
	Links []LinkEntry `yaml:"links,omitempty"`
}

type LinkEntry struct {
	Title    string `yaml:"title"`
	URL      string `yaml:"url,omitempty"`
	Image    string `yaml:"image,omitempty"`
	Price    string `yaml:"price,omitempty"`
	PriceStr string `yaml:"price_str,omitempty"`
	Order    int    `yaml:"order,omitempty"`
	Active   *bool  `yaml:"active,omitempty"` // defaults to true
}
