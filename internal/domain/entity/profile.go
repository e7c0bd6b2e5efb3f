package entity

import (
	"fmt"
	"time"
)

// ExpensivePrice is the price at or above which a product view counts as
// expensive, in the catalog's currency unit.
const ExpensivePrice = 100.0

// ProfileType discriminates the active variant of a Profile.
type ProfileType string

const (
	// ProfileReadHeavy marks users who mostly perform READ operations.
	ProfileReadHeavy ProfileType = "READ_HEAVY"
	// ProfileWriteHeavy marks users who mostly perform WRITE operations.
	ProfileWriteHeavy ProfileType = "WRITE_HEAVY"
	// ProfileExpensiveSeeker marks users who mostly view expensive products.
	ProfileExpensiveSeeker ProfileType = "EXPENSIVE_SEEKER"
)

// Profile is the behavioral profile of one user. It is a tagged union:
// Type names the active variant and exactly one of ReadStats, WriteStats
// and ExpensiveStats is non-nil at any time. The common header and the
// full operation history survive every variant migration unchanged.
type Profile struct {
	UserName        string            `json:"userName"`
	UserEmail       string            `json:"userEmail"` // Stable user key.
	UserAge         int               `json:"userAge"`
	CreatedAt       time.Time         `json:"profileCreatedAt"`
	LastActivityAt  time.Time         `json:"lastActivityAt"`
	TotalOperations int               `json:"totalOperations"` // Always equals len(History).
	History         []OperationRecord `json:"operationHistory"`

	Type           ProfileType           `json:"profileType"`
	ReadStats      *ReadHeavyStats       `json:"readStats,omitempty"`
	WriteStats     *WriteHeavyStats      `json:"writeStats,omitempty"`
	ExpensiveStats *ExpensiveSeekerStats `json:"expensiveStats,omitempty"`
}

// ReadHeavyStats holds the statistics of the READ_HEAVY variant.
type ReadHeavyStats struct {
	TotalReadOperations  int     `json:"totalReadOperations"`
	TotalWriteOperations int     `json:"totalWriteOperations"`
	ReadPercentage       float64 `json:"readPercentage"`

	GetAllProductsCount int `json:"getAllProductsCount"`
	GetProductByIDCount int `json:"getProductByIdCount"`

	ProductViewCount map[string]int    `json:"productViewCount"` // productId -> views
	ProductNames     map[string]string `json:"productNames"`     // productId -> last seen name
}

// WriteHeavyStats holds the statistics of the WRITE_HEAVY variant.
type WriteHeavyStats struct {
	TotalReadOperations  int     `json:"totalReadOperations"`
	TotalWriteOperations int     `json:"totalWriteOperations"`
	WritePercentage      float64 `json:"writePercentage"`

	AddProductCount    int `json:"addProductCount"`
	UpdateProductCount int `json:"updateProductCount"`
	DeleteProductCount int `json:"deleteProductCount"`

	ProductsModified   map[string]int `json:"productsModified"`   // productId -> modifications
	OperationTypeCount map[string]int `json:"operationTypeCount"` // operation name -> count
}

// ExpensiveSeekerStats holds the statistics of the EXPENSIVE_SEEKER variant.
// Price aggregates cover priced records only; a record without a price
// never contributes a zero.
type ExpensiveSeekerStats struct {
	ExpensiveProductViews   int     `json:"expensiveProductViews"`
	TotalProductViews       int     `json:"totalProductViews"`
	ExpensiveViewPercentage float64 `json:"expensiveViewPercentage"`

	AveragePriceViewed *float64 `json:"averagePriceViewed,omitempty"`
	HighestPriceViewed *float64 `json:"highestPriceViewed,omitempty"`
	LowestPriceViewed  *float64 `json:"lowestPriceViewed,omitempty"`

	ExpensiveProducts []ExpensiveProductView `json:"expensiveProducts"`
}

// ExpensiveProductView is one distinct expensive product a user has viewed.
type ExpensiveProductView struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	ViewCount   int     `json:"viewCount"`
}

// NewProfile creates the initial profile for a user: READ_HEAVY with zero
// counters and an empty history.
func NewProfile(userName, userEmail string, userAge int, now time.Time) *Profile {
	return &Profile{
		UserName:       userName,
		UserEmail:      userEmail,
		UserAge:        userAge,
		CreatedAt:      now,
		LastActivityAt: now,
		Type:           ProfileReadHeavy,
		ReadStats:      newReadHeavyStats(),
	}
}

func newReadHeavyStats() *ReadHeavyStats {
	return &ReadHeavyStats{
		ProductViewCount: make(map[string]int),
		ProductNames:     make(map[string]string),
	}
}

func newWriteHeavyStats() *WriteHeavyStats {
	return &WriteHeavyStats{
		ProductsModified:   make(map[string]int),
		OperationTypeCount: make(map[string]int),
	}
}

// Append adds one record to the history, refreshes the header and updates
// the active variant's statistics.
func (p *Profile) Append(rec OperationRecord) {
	p.History = append(p.History, rec)
	p.TotalOperations = len(p.History)
	if rec.Timestamp.After(p.LastActivityAt) {
		p.LastActivityAt = rec.Timestamp
	}
	p.applyStats(rec)
}

// applyStats updates the active variant's counters for one record. The
// record is already part of the history when this is called.
func (p *Profile) applyStats(rec OperationRecord) {
	switch p.Type {
	case ProfileReadHeavy:
		p.ReadStats.apply(p, rec)
	case ProfileWriteHeavy:
		p.WriteStats.apply(p, rec)
	case ProfileExpensiveSeeker:
		p.ExpensiveStats.apply(p, rec)
	}
}

func (s *ReadHeavyStats) apply(p *Profile, rec OperationRecord) {
	switch rec.Kind {
	case KindRead:
		s.TotalReadOperations++
		switch rec.OperationName {
		case "getAllProducts":
			s.GetAllProductsCount++
		case "getProductById":
			s.GetProductByIDCount++
		}
		if rec.ProductID != nil && rec.ProductName != nil {
			s.ProductViewCount[*rec.ProductID]++
			s.ProductNames[*rec.ProductID] = *rec.ProductName
		}
	case KindWrite:
		s.TotalWriteOperations++
	}
	if p.TotalOperations > 0 {
		s.ReadPercentage = float64(s.TotalReadOperations) * 100.0 / float64(p.TotalOperations)
	}
}

func (s *WriteHeavyStats) apply(p *Profile, rec OperationRecord) {
	switch rec.Kind {
	case KindWrite:
		s.TotalWriteOperations++
		switch rec.OperationName {
		case "addProduct":
			s.AddProductCount++
		case "updateProduct":
			s.UpdateProductCount++
		case "deleteProduct":
			s.DeleteProductCount++
		}
		if rec.OperationName != "" {
			s.OperationTypeCount[rec.OperationName]++
		}
		if rec.ProductID != nil {
			s.ProductsModified[*rec.ProductID]++
		}
	case KindRead:
		s.TotalReadOperations++
	}
	if p.TotalOperations > 0 {
		s.WritePercentage = float64(s.TotalWriteOperations) * 100.0 / float64(p.TotalOperations)
	}
}

func (s *ExpensiveSeekerStats) apply(p *Profile, rec OperationRecord) {
	if rec.ProductID != nil && rec.ProductName != nil && rec.ProductPrice != nil {
		s.TotalProductViews++
		if *rec.ProductPrice >= ExpensivePrice {
			s.ExpensiveProductViews++
			s.trackExpensiveProduct(*rec.ProductID, *rec.ProductName, *rec.ProductPrice)
		}
	}
	if s.TotalProductViews > 0 {
		s.ExpensiveViewPercentage = float64(s.ExpensiveProductViews) * 100.0 / float64(s.TotalProductViews)
	}

	if rec.ProductPrice != nil {
		price := *rec.ProductPrice
		if s.HighestPriceViewed == nil || price > *s.HighestPriceViewed {
			v := price
			s.HighestPriceViewed = &v
		}
		if s.LowestPriceViewed == nil || price < *s.LowestPriceViewed {
			v := price
			s.LowestPriceViewed = &v
		}
	}

	// Average over priced records only, recomputed from the history so it
	// stays a pure function of the records seen so far.
	var sum float64
	var count int
	for i := range p.History {
		if p.History[i].ProductPrice != nil {
			sum += *p.History[i].ProductPrice
			count++
		}
	}
	if count > 0 {
		avg := sum / float64(count)
		s.AveragePriceViewed = &avg
	}
}

func (s *ExpensiveSeekerStats) trackExpensiveProduct(id, name string, price float64) {
	for i := range s.ExpensiveProducts {
		if s.ExpensiveProducts[i].ProductID == id {
			s.ExpensiveProducts[i].ViewCount++

			return
		}
	}
	s.ExpensiveProducts = append(s.ExpensiveProducts, ExpensiveProductView{
		ProductID:   id,
		ProductName: name,
		Price:       price,
		ViewCount:   1,
	})
}

// Migrate builds a fresh profile of the target variant carrying the same
// identity and the full history, then replays every historical record
// through the variant's statistic updater in chronological order. The
// resulting counters are a pure function of the history, independent of
// how many migrations happened along the way.
func (p *Profile) Migrate(target ProfileType) *Profile {
	next := &Profile{
		UserName:       p.UserName,
		UserEmail:      p.UserEmail,
		UserAge:        p.UserAge,
		CreatedAt:      p.CreatedAt,
		LastActivityAt: p.LastActivityAt,
		Type:           target,
		History:        make([]OperationRecord, len(p.History)),
	}
	copy(next.History, p.History)
	next.TotalOperations = len(next.History)

	switch target {
	case ProfileReadHeavy:
		next.ReadStats = newReadHeavyStats()
	case ProfileWriteHeavy:
		next.WriteStats = newWriteHeavyStats()
	case ProfileExpensiveSeeker:
		next.ExpensiveStats = &ExpensiveSeekerStats{}
	}

	for i := range next.History {
		next.applyStats(next.History[i])
	}

	return next
}

// RebuildProfile constructs a profile of the given variant directly from
// a full record history, replaying every record through the variant's
// statistic updater in order. CreatedAt and LastActivityAt are taken from
// the earliest and latest record timestamps. Used by the offline
// extractor, which rebuilds profiles without any live state.
func RebuildProfile(userName, userEmail string, userAge int, target ProfileType, history []OperationRecord) *Profile {
	p := &Profile{
		UserName:  userName,
		UserEmail: userEmail,
		UserAge:   userAge,
		Type:      target,
		History:   make([]OperationRecord, len(history)),
	}
	copy(p.History, history)
	p.TotalOperations = len(p.History)

	switch target {
	case ProfileReadHeavy:
		p.ReadStats = newReadHeavyStats()
	case ProfileWriteHeavy:
		p.WriteStats = newWriteHeavyStats()
	case ProfileExpensiveSeeker:
		p.ExpensiveStats = &ExpensiveSeekerStats{}
	}

	for i := range p.History {
		ts := p.History[i].Timestamp
		if i == 0 || ts.Before(p.CreatedAt) {
			p.CreatedAt = ts
		}
		if ts.After(p.LastActivityAt) {
			p.LastActivityAt = ts
		}
		p.applyStats(p.History[i])
	}

	return p
}

// CountKind returns how many history records carry the given kind.
func (p *Profile) CountKind(kind OperationKind) int {
	n := 0
	for i := range p.History {
		if p.History[i].Kind == kind {
			n++
		}
	}

	return n
}

// CountExpensiveViews returns how many history records touched a product
// priced at or above the expensive threshold.
func (p *Profile) CountExpensiveViews() int {
	n := 0
	for i := range p.History {
		if price := p.History[i].ProductPrice; price != nil && *price >= ExpensivePrice {
			n++
		}
	}

	return n
}

// Description renders a one-line human readable summary of the variant.
func (p *Profile) Description() string {
	switch p.Type {
	case ProfileReadHeavy:
		return fmt.Sprintf("User who performs mostly READ operations (%.1f%% reads)", p.ReadStats.ReadPercentage)
	case ProfileWriteHeavy:
		return fmt.Sprintf("User who performs mostly WRITE operations (%.1f%% writes)", p.WriteStats.WritePercentage)
	case ProfileExpensiveSeeker:
		return fmt.Sprintf("User interested in expensive products (%.1f%% of views >= €%.2f)",
			p.ExpensiveStats.ExpensiveViewPercentage, ExpensivePrice)
	default:
		return string(p.Type)
	}
}

// Clone returns a deep copy safe to hand to readers outside the store.
func (p *Profile) Clone() *Profile {
	out := *p
	out.History = make([]OperationRecord, len(p.History))
	copy(out.History, p.History)

	if p.ReadStats != nil {
		stats := *p.ReadStats
		stats.ProductViewCount = copyIntMap(p.ReadStats.ProductViewCount)
		stats.ProductNames = copyStringMap(p.ReadStats.ProductNames)
		out.ReadStats = &stats
	}
	if p.WriteStats != nil {
		stats := *p.WriteStats
		stats.ProductsModified = copyIntMap(p.WriteStats.ProductsModified)
		stats.OperationTypeCount = copyIntMap(p.WriteStats.OperationTypeCount)
		out.WriteStats = &stats
	}
	if p.ExpensiveStats != nil {
		stats := *p.ExpensiveStats
		stats.AveragePriceViewed = copyFloat(p.ExpensiveStats.AveragePriceViewed)
		stats.HighestPriceViewed = copyFloat(p.ExpensiveStats.HighestPriceViewed)
		stats.LowestPriceViewed = copyFloat(p.ExpensiveStats.LowestPriceViewed)
		stats.ExpensiveProducts = make([]ExpensiveProductView, len(p.ExpensiveStats.ExpensiveProducts))
		copy(stats.ExpensiveProducts, p.ExpensiveStats.ExpensiveProducts)
		out.ExpensiveStats = &stats
	}

	return &out
}

func copyIntMap(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}

func copyFloat(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in

	return &v
}
