package egis

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencivic/assessing-api/internal/logger"
	"github.com/opencivic/assessing-api/internal/models"
)

// Period optionally pins layer queries to an explicit assessing period or tax
// bill year. The zero value means "latest available", resolved independently
// per layer.
type Period struct {
	FiscalYear int
	Quarter    string
	BillYear   int
}

func (p Period) hasFiscal() bool {
	return p.FiscalYear > 0
}

func (p Period) hasBillYear() bool {
	return p.BillYear > 0
}

// Aggregator assembles one denormalized property record from the seven EGIS
// layers. Layers are fetched concurrently; a failed layer degrades to an
// empty section rather than failing the record, so the output is always
// best-effort complete.
type Aggregator struct {
	client Querier
	log    *logger.Logger
}

// NewAggregator creates an Aggregator over the given layer querier.
func NewAggregator(client Querier, log *logger.Logger) *Aggregator {
	return &Aggregator{client: client, log: log}
}

// fetch indexes into the per-request result slots.
const (
	fetchRealEstate = iota
	fetchValues
	fetchResidential
	fetchCondo
	fetchOwners
	fetchTaxes
	fetchSales
	fetchCount
)

// Aggregate fetches and merges all layers for a parcel. The only hard failure
// is caller cancellation; individual layer failures are logged and their
// sections left empty.
func (a *Aggregator) Aggregate(ctx context.Context, parcelID string, period Period) (*models.PropertyRecord, error) {
	baseWhere := fmt.Sprintf("PID = '%s'", parcelID)

	assessingWhere := baseWhere
	if period.hasFiscal() {
		assessingWhere = fmt.Sprintf("%s AND FISCAL_YEAR = %d AND QUARTER = '%s'",
			baseWhere, period.FiscalYear, period.Quarter)
	}
	taxWhere := baseWhere
	if period.hasBillYear() {
		taxWhere = fmt.Sprintf("%s AND BILL_YEAR = %d", baseWhere, period.BillYear)
	}

	type fetchSpec struct {
		layer    int
		where    string
		geometry bool
	}
	fetches := [fetchCount]fetchSpec{
		fetchRealEstate:  {LayerRealEstate, assessingWhere, true},
		fetchValues:      {LayerValueHistory, baseWhere, false},
		fetchResidential: {LayerResidential, assessingWhere, false},
		fetchCondo:       {LayerCondo, assessingWhere, false},
		fetchOwners:      {LayerOwners, assessingWhere, false},
		fetchTaxes:       {LayerTaxes, taxWhere, false},
		fetchSales:       {LayerSales, baseWhere, false},
	}

	var (
		wg       sync.WaitGroup
		features [fetchCount][]Feature
		errs     [fetchCount]error
	)
	for i, spec := range fetches {
		wg.Add(1)
		go func(i int, spec fetchSpec) {
			defer wg.Done()
			features[i], errs[i] = a.client.Query(ctx, spec.layer, spec.where, spec.geometry)
		}(i, spec)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err != nil {
			// Every layer is optional: the section defaults to empty. A failed
			// geometry fetch just means no map image.
			a.log.Warn("Layer query failed, section degraded to empty", map[string]interface{}{
				"parcel_id": parcelID,
				"layer":     fetches[i].layer,
				"error":     err.Error(),
			})
			features[i] = nil
		}
	}

	record := &models.PropertyRecord{
		PropertyValue: make(map[int]float64),
	}

	realRows, geometry := a.realEstateRows(features[fetchRealEstate], period)
	primary := RealEstateRow{ParcelID: parcelID}
	if len(realRows) > 0 {
		primary = realRows[0]
	}
	record.Geometry = geometry

	record.Overview = models.Overview{
		ParcelID:      primary.ParcelID,
		Address:       BuildAddress(primary.StreetNumber, primary.StreetNumberSuffix, primary.StreetName, primary.Unit, primary.City, primary.Zip),
		LandUse:       CleanDescription(primary.LandUse),
		AssessedValue: primary.AssessedValue,
		FiscalYear:    primary.FiscalYear,
		Quarter:       primary.Quarter,
		Owners:        ownerNames(features[fetchOwners], period),
		Sales:         saleHistory(features[fetchSales]),
	}

	// Value history keeps every year; duplicates for a year are resolved by
	// last write, and consumers sort.
	for _, f := range features[fetchValues] {
		v := decodeValue(f)
		if v.FiscalYear > 0 {
			record.PropertyValue[v.FiscalYear] = v.AssessedValue
		}
	}

	record.PropertyAttributes = buildAttributes(
		residentialRows(features[fetchResidential], period),
		condoRows(features[fetchCondo], period),
	)

	record.PropertyTaxes = taxSection(features[fetchTaxes], period)

	return record, nil
}

// realEstateRows decodes the real-estate layer, keeps the latest assessing
// period unless one was pinned, and pulls the boundary geometry off the first
// surviving feature.
func (a *Aggregator) realEstateRows(features []Feature, period Period) ([]RealEstateRow, *models.EsriPolygon) {
	rows := make([]RealEstateRow, 0, len(features))
	geoms := make([]*models.EsriPolygon, 0, len(features))
	for _, f := range features {
		rows = append(rows, decodeRealEstate(f))
		geoms = append(geoms, f.Geometry)
	}

	if !period.hasFiscal() {
		keep := latestFiscalIndices(len(rows), func(i int) (int, string) {
			return rows[i].FiscalYear, rows[i].Quarter
		})
		rows, geoms = filterRealEstate(rows, geoms, keep)
	}

	for _, g := range geoms {
		if g != nil && !g.IsEmpty() {
			return rows, g
		}
	}
	return rows, nil
}

func filterRealEstate(rows []RealEstateRow, geoms []*models.EsriPolygon, keep []int) ([]RealEstateRow, []*models.EsriPolygon) {
	outRows := make([]RealEstateRow, 0, len(keep))
	outGeoms := make([]*models.EsriPolygon, 0, len(keep))
	for _, i := range keep {
		outRows = append(outRows, rows[i])
		outGeoms = append(outGeoms, geoms[i])
	}
	return outRows, outGeoms
}

func residentialRows(features []Feature, period Period) []ResidentialRow {
	rows := make([]ResidentialRow, 0, len(features))
	for _, f := range features {
		rows = append(rows, decodeResidential(f))
	}
	if period.hasFiscal() {
		return rows
	}
	keep := latestFiscalIndices(len(rows), func(i int) (int, string) {
		return rows[i].FiscalYear, rows[i].Quarter
	})
	out := make([]ResidentialRow, 0, len(keep))
	for _, i := range keep {
		out = append(out, rows[i])
	}
	return out
}

func condoRows(features []Feature, period Period) []CondoRow {
	rows := make([]CondoRow, 0, len(features))
	for _, f := range features {
		rows = append(rows, decodeCondo(f))
	}
	if period.hasFiscal() {
		return rows
	}
	keep := latestFiscalIndices(len(rows), func(i int) (int, string) {
		return rows[i].FiscalYear, rows[i].Quarter
	})
	out := make([]CondoRow, 0, len(keep))
	for _, i := range keep {
		out = append(out, rows[i])
	}
	return out
}

func ownerNames(features []Feature, period Period) []string {
	rows := make([]OwnerRow, 0, len(features))
	for _, f := range features {
		rows = append(rows, decodeOwner(f))
	}
	if !period.hasFiscal() {
		keep := latestFiscalIndices(len(rows), func(i int) (int, string) {
			return rows[i].FiscalYear, rows[i].Quarter
		})
		out := make([]OwnerRow, 0, len(keep))
		for _, i := range keep {
			out = append(out, rows[i])
		}
		rows = out
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

func saleHistory(features []Feature) []models.Sale {
	sales := make([]models.Sale, 0, len(features))
	for _, f := range features {
		s := decodeSale(f)
		sales = append(sales, models.Sale{
			Date:   s.Date,
			Price:  s.Price,
			Buyer:  ProperCase(s.Buyer),
			Seller: ProperCase(s.Seller),
		})
	}
	return sales
}

// taxSection keeps the latest bill year (or the pinned one) and derives the
// exemption details. The application flag is independent of the amount.
func taxSection(features []Feature, period Period) models.PropertyTaxes {
	rows := make([]TaxRow, 0, len(features))
	for _, f := range features {
		rows = append(rows, decodeTax(f))
	}
	if len(rows) == 0 {
		return models.PropertyTaxes{}
	}

	best := rows[0]
	for _, r := range rows[1:] {
		if period.hasBillYear() {
			if r.BillYear == period.BillYear {
				best = r
			}
			continue
		}
		if r.BillYear > best.BillYear {
			best = r
		}
	}

	return models.PropertyTaxes{
		BillYear: best.BillYear,
		GrossTax: best.GrossTax,
		NetTax:   best.NetTax,
		ResidentialExemption: models.ExemptionDetail{
			Amount:  best.ResidentialExemptionAmount,
			Applied: best.ResidentialApplication,
		},
		PersonalExemption: models.ExemptionDetail{
			Amount:  best.PersonalExemptionAmount,
			Applied: best.PersonalApplication,
		},
	}
}

// buildAttributes applies the residential-over-condo precedence and the
// multi-building / complex-unit detection rules.
func buildAttributes(res []ResidentialRow, condos []CondoRow) models.PropertyAttributes {
	var condo *CondoRow
	if len(condos) > 0 {
		condo = &condos[0]
	}

	attrs := models.PropertyAttributes{
		BuildingGroups: []models.AttributeGroup{},
	}

	if condo != nil && condo.Complex != "" {
		attrs.ComplexUnit = true
		attrs.MasterParcelID = MasterParcelID(condo.Complex)
	}

	switch {
	case len(res) > 1 && anyStructuralDifference(res):
		// Distinct structural attributes across rows means separate buildings:
		// each row becomes its own group, no condo merging.
		attrs.MultiBuilding = true
		for _, r := range res {
			attrs.BuildingGroups = append(attrs.BuildingGroups, mergeGroup(&r, nil))
		}
	case len(res) > 0:
		attrs.BuildingGroups = append(attrs.BuildingGroups, mergeGroup(&res[0], condo))
	case condo != nil:
		attrs.BuildingGroups = append(attrs.BuildingGroups, mergeGroup(nil, condo))
	}

	if len(attrs.BuildingGroups) > 0 {
		attrs.LandUse = attrs.BuildingGroups[0].LandUse
	}
	return attrs
}

func anyStructuralDifference(rows []ResidentialRow) bool {
	for i := 1; i < len(rows); i++ {
		if structuralFieldsDiffer(rows[i-1], rows[i]) {
			return true
		}
	}
	return false
}

// mergeGroup builds one attribute group. Residential values win whenever
// present: non-empty for strings, non-nil for numerics (zero is a valid
// reported value and counts as present). Missing on both sides leaves the
// attribute unset.
func mergeGroup(res *ResidentialRow, condo *CondoRow) models.AttributeGroup {
	var r ResidentialRow
	if res != nil {
		r = *res
	}
	var c CondoRow
	if condo != nil {
		c = *condo
	}

	return models.AttributeGroup{
		LandUse:        CleanDescription(pickString(r.LandUse, c.LandUse)),
		Style:          CleanDescription(pickString(r.Style, c.Style)),
		YearBuilt:      pickInt(r.YearBuilt, c.YearBuilt),
		LivingArea:     pickFloat(r.LivingArea, c.LivingArea),
		Bedrooms:       pickInt(r.Bedrooms, c.Bedrooms),
		FullBaths:      pickInt(r.FullBaths, c.FullBaths),
		HalfBaths:      pickInt(r.HalfBaths, c.HalfBaths),
		Kitchens:       pickInt(r.Kitchens, c.Kitchens),
		Stories:        pickFloat(r.Stories, c.Stories),
		Foundation:     CleanDescription(pickString(r.Foundation, c.Foundation)),
		ExteriorFinish: CleanDescription(pickString(r.ExteriorFinish, c.ExteriorFinish)),
		Heating:        CleanDescription(pickString(r.Heating, c.Heating)),
		Cooling:        CleanDescription(pickString(r.Cooling, c.Cooling)),
		Roof:           CleanDescription(pickString(r.Roof, c.Roof)),
	}
}

func pickString(res, condo string) string {
	if res != "" {
		return res
	}
	return condo
}

func pickInt(res, condo *int) *int {
	if res != nil {
		return res
	}
	return condo
}

func pickFloat(res, condo *float64) *float64 {
	if res != nil {
		return res
	}
	return condo
}

// latestFiscalIndices returns the indices of rows whose (fiscal year, quarter)
// equals the maximum present, compared year-first. Layers resolve their latest
// version independently; they are never forced to agree.
func latestFiscalIndices(n int, key func(i int) (int, string)) []int {
	if n == 0 {
		return nil
	}

	bestYear, bestQuarter := key(0)
	for i := 1; i < n; i++ {
		y, q := key(i)
		if y > bestYear || (y == bestYear && q > bestQuarter) {
			bestYear, bestQuarter = y, q
		}
	}

	var keep []int
	for i := 0; i < n; i++ {
		y, q := key(i)
		if y == bestYear && q == bestQuarter {
			keep = append(keep, i)
		}
	}
	return keep
}
