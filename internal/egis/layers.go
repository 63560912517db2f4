package egis

import (
	"time"
)

// Layer numbers under the EGIS base URL. Each layer is an independently
// versioned table keyed by parcel ID plus a temporal field: (FISCAL_YEAR,
// QUARTER) for the assessing layers, BILL_YEAR for taxes.
const (
	LayerRealEstate   = 0 // current parcel record, address, geometry
	LayerValueHistory = 1 // assessed value per fiscal year
	LayerResidential  = 2 // residential building attributes
	LayerCondo        = 3 // condo unit attributes
	LayerOwners       = 4 // owners of record
	LayerTaxes        = 5 // bill amounts and exemption status
	LayerSales        = 6 // sale history
)

// RealEstateRow is the typed form of a real-estate layer feature.
type RealEstateRow struct {
	ParcelID           string
	StreetNumber       string
	StreetNumberSuffix string
	StreetName         string
	Unit               string
	City               string
	Zip                string
	LandUse            string
	FiscalYear         int
	Quarter            string
	AssessedValue      float64
}

// ValueRow is one fiscal year's assessed value.
type ValueRow struct {
	FiscalYear    int
	AssessedValue float64
}

// ResidentialRow is the typed form of a residential-attributes feature. One
// row per building; parcels with several buildings return several rows for
// the same (fiscal year, quarter).
type ResidentialRow struct {
	FiscalYear     int
	Quarter        string
	LandUse        string
	Style          string
	YearBuilt      *int
	LivingArea     *float64
	Bedrooms       *int
	FullBaths      *int
	HalfBaths      *int
	Kitchens       *int
	Stories        *float64
	Foundation     string
	ExteriorFinish string
	Heating        string
	Cooling        string
	Roof           string
}

// CondoRow is the typed form of a condo-attributes feature. Complex is
// non-empty when the unit belongs to a condo complex under a master parcel.
type CondoRow struct {
	FiscalYear     int
	Quarter        string
	Complex        string
	LandUse        string
	Style          string
	YearBuilt      *int
	LivingArea     *float64
	Bedrooms       *int
	FullBaths      *int
	HalfBaths      *int
	Kitchens       *int
	Stories        *float64
	Foundation     string
	ExteriorFinish string
	Heating        string
	Cooling        string
	Roof           string
}

// OwnerRow is one owner of record for a (fiscal year, quarter).
type OwnerRow struct {
	Name       string
	FiscalYear int
	Quarter    string
}

// TaxRow is the typed form of a taxes-layer feature for one bill year.
type TaxRow struct {
	BillYear                   int
	GrossTax                   float64
	NetTax                     float64
	ResidentialExemptionAmount float64
	PersonalExemptionAmount    float64
	ResidentialApplication     bool
	PersonalApplication        bool
}

// SaleRow is one entry in the sale history.
type SaleRow struct {
	Date   string
	Price  float64
	Buyer  string
	Seller string
}

func decodeRealEstate(f Feature) RealEstateRow {
	a := f.Attributes
	return RealEstateRow{
		ParcelID:           attrString(a, "PID"),
		StreetNumber:       attrString(a, "ST_NUM"),
		StreetNumberSuffix: attrString(a, "ST_NUM_SUF"),
		StreetName:         attrString(a, "ST_NAME"),
		Unit:               attrString(a, "UNIT_NUM"),
		City:               attrString(a, "CITY"),
		Zip:                attrString(a, "ZIP_CODE"),
		LandUse:            attrString(a, "LU_DESC"),
		FiscalYear:         attrInt(a, "FISCAL_YEAR"),
		Quarter:            attrString(a, "QUARTER"),
		AssessedValue:      attrFloat(a, "TOTAL_VALUE"),
	}
}

func decodeValue(f Feature) ValueRow {
	a := f.Attributes
	return ValueRow{
		FiscalYear:    attrInt(a, "FISCAL_YEAR"),
		AssessedValue: attrFloat(a, "ASSESSED_VALUE"),
	}
}

func decodeResidential(f Feature) ResidentialRow {
	a := f.Attributes
	return ResidentialRow{
		FiscalYear:     attrInt(a, "FISCAL_YEAR"),
		Quarter:        attrString(a, "QUARTER"),
		LandUse:        attrString(a, "LU_DESC"),
		Style:          attrString(a, "BLDG_STYLE"),
		YearBuilt:      attrIntPtr(a, "YR_BUILT"),
		LivingArea:     attrFloatPtr(a, "LIVING_AREA"),
		Bedrooms:       attrIntPtr(a, "BED_RMS"),
		FullBaths:      attrIntPtr(a, "FULL_BTH"),
		HalfBaths:      attrIntPtr(a, "HLF_BTH"),
		Kitchens:       attrIntPtr(a, "KITCHENS"),
		Stories:        attrFloatPtr(a, "NUM_FLOORS"),
		Foundation:     attrString(a, "FOUNDATION"),
		ExteriorFinish: attrString(a, "EXT_FINISH"),
		Heating:        attrString(a, "HEAT_TYPE"),
		Cooling:        attrString(a, "AC_TYPE"),
		Roof:           attrString(a, "ROOF_STRUCTURE"),
	}
}

func decodeCondo(f Feature) CondoRow {
	a := f.Attributes
	return CondoRow{
		FiscalYear:     attrInt(a, "FISCAL_YEAR"),
		Quarter:        attrString(a, "QUARTER"),
		Complex:        attrString(a, "CM_ID"),
		LandUse:        attrString(a, "LU_DESC"),
		Style:          attrString(a, "BLDG_STYLE"),
		YearBuilt:      attrIntPtr(a, "YR_BUILT"),
		LivingArea:     attrFloatPtr(a, "LIVING_AREA"),
		Bedrooms:       attrIntPtr(a, "BED_RMS"),
		FullBaths:      attrIntPtr(a, "FULL_BTH"),
		HalfBaths:      attrIntPtr(a, "HLF_BTH"),
		Kitchens:       attrIntPtr(a, "KITCHENS"),
		Stories:        attrFloatPtr(a, "NUM_FLOORS"),
		Foundation:     attrString(a, "FOUNDATION"),
		ExteriorFinish: attrString(a, "EXT_FINISH"),
		Heating:        attrString(a, "HEAT_TYPE"),
		Cooling:        attrString(a, "AC_TYPE"),
		Roof:           attrString(a, "ROOF_STRUCTURE"),
	}
}

func decodeOwner(f Feature) OwnerRow {
	a := f.Attributes
	return OwnerRow{
		Name:       attrString(a, "OWNER"),
		FiscalYear: attrInt(a, "FISCAL_YEAR"),
		Quarter:    attrString(a, "QUARTER"),
	}
}

func decodeTax(f Feature) TaxRow {
	a := f.Attributes
	return TaxRow{
		BillYear:                   attrInt(a, "BILL_YEAR"),
		GrossTax:                   attrFloat(a, "GROSS_TAX"),
		NetTax:                     attrFloat(a, "NET_TAX"),
		ResidentialExemptionAmount: attrFloat(a, "RESEX_AMT"),
		PersonalExemptionAmount:    attrFloat(a, "PERSEX_AMT"),
		ResidentialApplication:     attrBool(a, "RESEX_FLAG"),
		PersonalApplication:        attrBool(a, "PERSEX_FLAG"),
	}
}

func decodeSale(f Feature) SaleRow {
	a := f.Attributes
	return SaleRow{
		Date:   attrEpochDate(a, "SALE_DATE"),
		Price:  attrFloat(a, "SALE_PRICE"),
		Buyer:  attrString(a, "BUYER"),
		Seller: attrString(a, "SELLER"),
	}
}

// structuralFieldsDiffer reports whether two residential rows differ on any
// attribute in the multi-building comparison set. Differences here mean the
// rows describe distinct buildings rather than a re-keyed duplicate.
func structuralFieldsDiffer(a, b ResidentialRow) bool {
	return a.LandUse != b.LandUse ||
		a.Style != b.Style ||
		!intPtrEqual(a.YearBuilt, b.YearBuilt) ||
		!floatPtrEqual(a.LivingArea, b.LivingArea) ||
		!intPtrEqual(a.Bedrooms, b.Bedrooms) ||
		!intPtrEqual(a.FullBaths, b.FullBaths) ||
		!intPtrEqual(a.HalfBaths, b.HalfBaths) ||
		!intPtrEqual(a.Kitchens, b.Kitchens) ||
		!floatPtrEqual(a.Stories, b.Stories) ||
		a.Foundation != b.Foundation ||
		a.ExteriorFinish != b.ExteriorFinish ||
		a.Heating != b.Heating ||
		a.Roof != b.Roof
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Attribute extraction helpers. JSON decoding yields float64 for every number
// and nil for SQL NULLs; numeric fields occasionally arrive as strings.

func attrString(a map[string]interface{}, key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func attrFloat(a map[string]interface{}, key string) float64 {
	if p := attrFloatPtr(a, key); p != nil {
		return *p
	}
	return 0
}

func attrFloatPtr(a map[string]interface{}, key string) *float64 {
	switch v := a[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

func attrInt(a map[string]interface{}, key string) int {
	if p := attrIntPtr(a, key); p != nil {
		return *p
	}
	return 0
}

func attrIntPtr(a map[string]interface{}, key string) *int {
	if p := attrFloatPtr(a, key); p != nil {
		n := int(*p)
		return &n
	}
	return nil
}

func attrBool(a map[string]interface{}, key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		return v == "Y" || v == "1" || v == "true"
	case float64:
		return v != 0
	default:
		return false
	}
}

// attrEpochDate converts the upstream epoch-milliseconds date encoding into a
// YYYY-MM-DD string. Missing or zero values yield an empty string.
func attrEpochDate(a map[string]interface{}, key string) string {
	p := attrFloatPtr(a, key)
	if p == nil || *p == 0 {
		return ""
	}
	return time.UnixMilli(int64(*p)).UTC().Format("2006-01-02")
}
