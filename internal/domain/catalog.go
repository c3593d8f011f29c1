package domain

// CatalogKind identifies one of the simple name-only lookup tables
type CatalogKind string

const (
	CatalogBrand    CatalogKind = "brand"
	CatalogSubBrand CatalogKind = "sub_brand"
	CatalogFlavour  CatalogKind = "flavour"
	CatalogPackType CatalogKind = "pack_type"
	CatalogPackCode CatalogKind = "pack_code"
	CatalogIndustry CatalogKind = "industry"
)

var catalogTables = map[CatalogKind]string{
	CatalogBrand:    "brand_names",
	CatalogSubBrand: "sub_brands",
	CatalogFlavour:  "flavours",
	CatalogPackType: "pack_types",
	CatalogPackCode: "pack_codes",
	CatalogIndustry: "industries",
}

var catalogLabels = map[CatalogKind]string{
	CatalogBrand:    "Brand",
	CatalogSubBrand: "Sub brand",
	CatalogFlavour:  "Flavour",
	CatalogPackType: "Pack type",
	CatalogPackCode: "Pack code",
	CatalogIndustry: "Industry",
}

// CatalogKinds lists every lookup table in migration order
var CatalogKinds = []CatalogKind{
	CatalogBrand, CatalogSubBrand, CatalogFlavour, CatalogPackType, CatalogPackCode, CatalogIndustry,
}

// Table returns the backing table name
func (k CatalogKind) Table() string { return catalogTables[k] }

// Label returns the display name used in response messages
func (k CatalogKind) Label() string { return catalogLabels[k] }

// Valid reports whether k is a known catalog
func (k CatalogKind) Valid() bool {
	_, ok := catalogTables[k]
	return ok
}
