package models

// PropertyRecord is the denormalized parcel record assembled from the EGIS
// data layers. It is built fresh per request and never cached in process.
// Nullable numeric attributes use pointers so a genuine zero (e.g. zero half
// baths) is distinguishable from "not reported".
type PropertyRecord struct {
	Overview           Overview           `json:"overview"`
	PropertyValue      map[int]float64    `json:"propertyValue"`
	PropertyAttributes PropertyAttributes `json:"propertyAttributes"`
	PropertyTaxes      PropertyTaxes      `json:"propertyTaxes"`
	Geometry           *EsriPolygon       `json:"geometry,omitempty"`
}

// Overview carries the identity and headline fields of a parcel.
type Overview struct {
	ParcelID      string   `json:"parcelId"`
	Address       string   `json:"address"`
	Owners        []string `json:"owners"`
	LandUse       string   `json:"landUse,omitempty"`
	AssessedValue float64  `json:"assessedValue"`
	FiscalYear    int      `json:"fiscalYear"`
	Quarter       string   `json:"quarter"`
	Sales         []Sale   `json:"sales,omitempty"`
}

// Sale is one entry in a parcel's sale history.
type Sale struct {
	Date   string  `json:"date,omitempty"`
	Price  float64 `json:"price"`
	Buyer  string  `json:"buyer,omitempty"`
	Seller string  `json:"seller,omitempty"`
}

// PropertyAttributes groups the structural attributes of a parcel. A parcel
// with several distinct residential buildings produces one group per building;
// a condo unit inside a complex is flagged with its master parcel.
type PropertyAttributes struct {
	LandUse        string           `json:"landUse,omitempty"`
	BuildingGroups []AttributeGroup `json:"buildingGroups"`
	MultiBuilding  bool             `json:"multiBuilding"`
	ComplexUnit    bool             `json:"complexUnit"`
	MasterParcelID string           `json:"masterParcelId,omitempty"`
}

// AttributeGroup is the structural attribute set of one building (or the
// merged residential/condo view of a single-building parcel).
type AttributeGroup struct {
	LandUse        string   `json:"landUse,omitempty"`
	Style          string   `json:"style,omitempty"`
	YearBuilt      *int     `json:"yearBuilt,omitempty"`
	LivingArea     *float64 `json:"livingArea,omitempty"`
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	FullBaths      *int     `json:"fullBaths,omitempty"`
	HalfBaths      *int     `json:"halfBaths,omitempty"`
	Kitchens       *int     `json:"kitchens,omitempty"`
	Stories        *float64 `json:"stories,omitempty"`
	Foundation     string   `json:"foundation,omitempty"`
	ExteriorFinish string   `json:"exteriorFinish,omitempty"`
	Heating        string   `json:"heating,omitempty"`
	Cooling        string   `json:"cooling,omitempty"`
	Roof           string   `json:"roof,omitempty"`
}

// PropertyTaxes carries the latest bill amounts and per-program exemption
// status for a parcel.
type PropertyTaxes struct {
	BillYear             int             `json:"billYear"`
	GrossTax             float64         `json:"grossTax"`
	NetTax               float64         `json:"netTax"`
	ResidentialExemption ExemptionDetail `json:"residentialExemption"`
	PersonalExemption    ExemptionDetail `json:"personalExemption"`
}

// ExemptionDetail is the dollar amount of a granted exemption plus the
// independent flag recording whether an application was submitted.
type ExemptionDetail struct {
	Amount  float64 `json:"amount"`
	Applied bool    `json:"applied"`
}
