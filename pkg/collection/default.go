package collection

// Default returns an empty collection. Every type is drawn under its own name.
func Default() *Collection {
	return &Collection{
		Name: "default",
		Defaults: Defaults{
			BgColor:     "#ffffff",
			FgColor:     "#000000",
			BorderColor: "#000000",
			ArcColor:    "#000000",
		},
	}
}
